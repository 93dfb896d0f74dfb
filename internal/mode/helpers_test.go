package mode

import "time"

var timeZero = time.Unix(0, 0)

type nopDisplay struct{}

func (nopDisplay) WriteLine(int, string) error { return nil }
func (nopDisplay) Clear() error                { return nil }
func (nopDisplay) SetBacklight(bool) error     { return nil }
