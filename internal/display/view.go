package display

import (
	"github.com/atomicstack/piradio/internal/format/field"
	"github.com/atomicstack/piradio/internal/hw"
)

// View selects a line template.
type View int

const (
	ControlView View = iota
	NowPlayingView
)

func (v View) String() string {
	if v == NowPlayingView {
		return "now-playing"
	}
	return "control"
}

// Lines formats the four rows of view from fields.
func Lines(view View, fields map[Key]string) [hw.Rows]string {
	top := field.Fit(fields[KeyMode], 14, field.AlignCenter) + " " + fields[KeyTime]
	var rows [hw.Rows]string
	switch view {
	case NowPlayingView:
		rows = [hw.Rows]string{
			top,
			field.Fit(fields[KeyTitle], hw.Columns, field.AlignCenter),
			field.Fit(fields[KeyArtist], hw.Columns, field.AlignCenter),
			field.Fit(fields[KeyAlbum], hw.Columns, field.AlignCenter),
		}
	default:
		rows = [hw.Rows]string{
			top,
			field.Fit(fields[KeyMenuInfo], hw.Columns, field.AlignCenter),
			field.Fit(fields[KeyMenuInfo2], hw.Columns, field.AlignCenter),
			"Vol:  -|" + fields[KeyVol] + "|+",
		}
	}
	for i := range rows {
		rows[i] = field.Fit(rows[i], hw.Columns, field.AlignLeft)
	}
	return rows
}

// widths lists the column budget of each field for overflow tracing.
var widths = map[Key]int{
	KeyMode:      14,
	KeyTime:      5,
	KeyTitle:     hw.Columns,
	KeyArtist:    hw.Columns,
	KeyAlbum:     hw.Columns,
	KeyMenuInfo:  hw.Columns,
	KeyMenuInfo2: hw.Columns,
	KeyVol:       10,
}
