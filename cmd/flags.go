package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/pflag"

	"github.com/marcus/storefront/internal/models"
)

// statusValue is a pflag.Value restricted to reservation statuses.
type statusValue struct {
	status models.ReservationStatus
}

var _ pflag.Value = (*statusValue)(nil)

func (v *statusValue) String() string { return string(v.status) }

func (v *statusValue) Set(s string) error {
	st := models.NormalizeStatus(s)
	if !models.IsValidStatus(st) {
		return errors.New("must be one of pending, confirmed, cancelled")
	}
	v.status = st
	return nil
}

func (v *statusValue) Type() string { return "status" }

// headerStyleValue is a pflag.Value restricted to header styles.
type headerStyleValue struct {
	style models.HeaderStyle
}

var _ pflag.Value = (*headerStyleValue)(nil)

func (v *headerStyleValue) String() string { return string(v.style) }

func (v *headerStyleValue) Set(s string) error {
	st := models.HeaderStyle(strings.ToLower(strings.TrimSpace(s)))
	if !models.IsValidHeaderStyle(st) {
		return errors.New("must be one of solid, gradient, glass")
	}
	v.style = st
	return nil
}

func (v *headerStyleValue) Type() string { return "style" }

// changed reports whether a flag was set on the command line.
func changed(fs *pflag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	return f != nil && f.Changed
}
