package types

import (
	"fmt"
	"regexp"
	"strings"
)

// Phone regions understood by PhonePolicy.
const (
	RegionUA   = "UA"
	RegionUS   = "US"
	RegionINTL = "INTL"
)

var phonePatterns = map[string]*regexp.Regexp{
	RegionUA:   regexp.MustCompile(`^(?:\+380|380|0)(?:[ \-]?\d{2})(?:[ \-]?\d{3})(?:[ \-]?\d{2})(?:[ \-]?\d{2})$`),
	RegionUS:   regexp.MustCompile(`^(?:\+?1[ \-]?)?(?:\(?\d{3}\)?[ \-]?)?\d{3}[ \-]?\d{4}$`),
	RegionINTL: regexp.MustCompile(`^\+?[1-9]\d{6,14}$`),
}

var phoneHints = map[string]string{
	RegionUA:   "Use +380XX XXX XX XX or 0XX XXX XX XX; spaces/- allowed.",
	RegionUS:   "Use +1 NNN NNN NNNN or (NNN) NNN-NNNN; spaces/- allowed.",
	RegionINTL: "Use E.164: +[country][number], total 7-15 digits without separators.",
}

// PhonePolicy validates phone numbers for one region.
// The zero value validates Ukrainian numbers.
type PhonePolicy struct {
	Region string
}

// NewPhonePolicy returns the policy for region (case-insensitive).
func NewPhonePolicy(region string) (PhonePolicy, error) {
	key := strings.ToUpper(strings.TrimSpace(region))
	if _, ok := phonePatterns[key]; !ok {
		return PhonePolicy{}, fmt.Errorf("%w: %q (allowed: %s, %s, %s)",
			ErrInvalidRegion, region, RegionUA, RegionUS, RegionINTL)
	}
	return PhonePolicy{Region: key}, nil
}

func (p PhonePolicy) region() string {
	if p.Region == "" {
		return RegionUA
	}
	return p.Region
}

// Validate returns an error wrapping ErrInvalidPhone with a format hint when
// value does not match the region pattern.
func (p PhonePolicy) Validate(value string) error {
	region := p.region()
	pattern, ok := phonePatterns[region]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidRegion, region)
	}
	if !pattern.MatchString(value) {
		return fmt.Errorf("%w %q for region %s. %s",
			ErrInvalidPhone, value, region, phoneHints[region])
	}
	return nil
}
