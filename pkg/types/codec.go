package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Decoding re-applies field validation, except for the future-date rule on
// birthdays: a stored birthday stays valid as time passes.

func (n *Name) UnmarshalText(b []byte) (err error) {
	*n, err = NewName(string(b))
	return err
}

func (p *Phone) UnmarshalText(b []byte) (err error) {
	*p, err = NewPhone(string(b))
	return err
}

func (e *Email) UnmarshalText(b []byte) (err error) {
	*e, err = NewEmail(string(b))
	return err
}

func (a *Address) UnmarshalText(b []byte) (err error) {
	*a, err = NewAddress(string(b))
	return err
}

func (t *Title) UnmarshalText(b []byte) (err error) {
	*t, err = NewTitle(string(b))
	return err
}

func (c *Content) UnmarshalText(b []byte) (err error) {
	*c, err = NewContent(string(b))
	return err
}

func (b *Birthday) UnmarshalText(text []byte) error {
	t, err := time.Parse(BirthdayLayout, string(text))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, text)
	}
	b.date = t
	return nil
}

func (t *Tag) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	tag, err := NewTag(raw.Name, raw.Color)
	if err != nil {
		return err
	}
	*t = tag
	return nil
}
