// Package display owns the LCD: a mailbox of field updates and the single
// renderer that turns them into line writes.
package display

// Key names a display field.
type Key string

const (
	KeyMode      Key = "mode"
	KeyTitle     Key = "title"
	KeyArtist    Key = "artist"
	KeyAlbum     Key = "album"
	KeyMenuInfo  Key = "menuinfo"
	KeyMenuInfo2 Key = "menuinfo2"
	KeyVol       Key = "vol"
	KeyTime      Key = "time"
	// KeyMetadata carries a Metadata value rather than text.
	KeyMetadata Key = "metadata"
)

// Metadata is the now-playing triple.
type Metadata struct {
	Title  string
	Artist string
	Album  string
}

// Update is one mailbox entry.
type Update struct {
	Key   Key
	Value string
	Meta  Metadata
}

// Text builds a plain field update.
func Text(key Key, value string) Update {
	return Update{Key: key, Value: value}
}

// Meta builds a metadata update.
func Meta(m Metadata) Update {
	return Update{Key: KeyMetadata, Meta: m}
}

// ClearMetadata blanks title, artist and album.
func ClearMetadata() Update {
	return Meta(Metadata{})
}

// Sink accepts updates without blocking.
type Sink interface {
	Submit(Update)
}

// resetsTimeout reports whether writing key forces the control view.
func resetsTimeout(key Key) bool {
	switch key {
	case KeyTime, KeyMenuInfo2, KeyMetadata:
		return false
	}
	return true
}

// DefaultFields is the state shown before anything has been submitted.
func DefaultFields() map[Key]string {
	return map[Key]string{
		KeyMode:      "PiRadio",
		KeyTitle:     "",
		KeyArtist:    "",
		KeyAlbum:     "",
		KeyMenuInfo:  "Starting up",
		KeyMenuInfo2: "",
		KeyVol:       "",
		KeyTime:      "00:00",
	}
}

// VolumeBar renders level (0-100) as ten cells.
func VolumeBar(level int) string {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	blocks := level / 10
	bar := make([]rune, 0, 10)
	for i := 0; i < 10; i++ {
		if i < blocks {
			bar = append(bar, '█')
		} else {
			bar = append(bar, '-')
		}
	}
	return string(bar)
}
