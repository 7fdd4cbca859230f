// Package types provides type definitions for the brand brief and generated brand kit.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Section names a top-level part of a brief that can be written independently.
type Section string

// Brief sections
const (
	SectionBasicInfo         Section = "basicInfo"
	SectionVisualPreferences Section = "visualPreferences"
	SectionGeneratedAssets   Section = "generatedAssets"
)

// Sections lists every brief section in document order.
func Sections() []Section {
	return []Section{SectionBasicInfo, SectionVisualPreferences, SectionGeneratedAssets}
}

// Valid reports whether s names a known section.
func (s Section) Valid() bool {
	switch s {
	case SectionBasicInfo, SectionVisualPreferences, SectionGeneratedAssets:
		return true
	}
	return false
}

// BasicInfo describes the business being branded.
type BasicInfo struct {
	BusinessName        string `json:"businessName" yaml:"businessName" validate:"max=120"`
	Industry            string `json:"industry" yaml:"industry" validate:"max=120"`
	BusinessDescription string `json:"businessDescription" yaml:"businessDescription" validate:"max=4000"`
}

// StylePreferences holds the three style sliders of the brief wizard.
// An empty value means the user expressed no preference.
type StylePreferences struct {
	ModernClassic       string `json:"modernClassic" yaml:"modernClassic" validate:"omitempty,oneof=modern classic balanced"`
	BoldSubtle          string `json:"boldSubtle" yaml:"boldSubtle" validate:"omitempty,oneof=bold subtle balanced"`
	PlayfulProfessional string `json:"playfulProfessional" yaml:"playfulProfessional" validate:"omitempty,oneof=playful professional balanced"`
}

// VisualPreferences captures the colors and style the user leans toward.
type VisualPreferences struct {
	ColorPalette     []string         `json:"colorPalette" yaml:"colorPalette" validate:"max=10,dive,hexcolor"`
	StylePreferences StylePreferences `json:"stylePreferences" yaml:"stylePreferences"`
}

// GeneratedAssets is the result bag filled in by the generation stages.
// Each stage owns a disjoint subset of these fields.
type GeneratedAssets struct {
	Names         []string `json:"names,omitempty" yaml:"names,omitempty"`
	NameRationale string   `json:"nameRationale,omitempty" yaml:"nameRationale,omitempty"`
	Taglines      []string `json:"taglines,omitempty" yaml:"taglines,omitempty"`
	Mission       string   `json:"mission,omitempty" yaml:"mission,omitempty"`
	Values        []string `json:"values,omitempty" yaml:"values,omitempty"`
	Colors        []string `json:"colors,omitempty" yaml:"colors,omitempty"`
	Typography    string   `json:"typography,omitempty" yaml:"typography,omitempty"`
	VisualStyle   string   `json:"visualStyle,omitempty" yaml:"visualStyle,omitempty"`
	LogoURL       string   `json:"logoUrl,omitempty" yaml:"logoUrl,omitempty"`
}

// BrandBrief is the user's description of a business plus everything generated for it.
type BrandBrief struct {
	ID                uuid.UUID         `json:"id,omitempty" yaml:"id,omitempty"`
	UserID            *uuid.UUID        `json:"userId,omitempty" yaml:"userId,omitempty"`
	BasicInfo         BasicInfo         `json:"basicInfo" yaml:"basicInfo"`
	VisualPreferences VisualPreferences `json:"visualPreferences" yaml:"visualPreferences"`
	GeneratedAssets   GeneratedAssets   `json:"generatedAssets" yaml:"generatedAssets"`
	CreatedAt         time.Time         `json:"createdAt,omitempty" yaml:"-"`
	UpdatedAt         time.Time         `json:"updatedAt,omitempty" yaml:"-"`
}

// NewBrandBrief returns an empty brief with a fresh ID.
func NewBrandBrief() *BrandBrief {
	now := time.Now().UTC()
	return &BrandBrief{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the user-supplied sections of the brief.
func (b *BrandBrief) Validate() error {
	validate := validator.New()
	if err := validate.Struct(b.BasicInfo); err != nil {
		return err
	}
	return validate.Struct(b.VisualPreferences)
}

// Clone returns a deep copy so callers can hand out snapshots safely.
func (b *BrandBrief) Clone() *BrandBrief {
	if b == nil {
		return nil
	}
	out := *b
	if b.UserID != nil {
		id := *b.UserID
		out.UserID = &id
	}
	out.VisualPreferences.ColorPalette = cloneStrings(b.VisualPreferences.ColorPalette)
	out.GeneratedAssets = b.GeneratedAssets.Clone()
	return &out
}

// Clone returns a deep copy of the assets.
func (a GeneratedAssets) Clone() GeneratedAssets {
	out := a
	out.Names = cloneStrings(a.Names)
	out.Taglines = cloneStrings(a.Taglines)
	out.Values = cloneStrings(a.Values)
	out.Colors = cloneStrings(a.Colors)
	return out
}

// ResolvedName returns the user-supplied business name, falling back to the
// first generated name. Returns "" when neither exists.
func (b *BrandBrief) ResolvedName() string {
	if b.BasicInfo.BusinessName != "" {
		return b.BasicInfo.BusinessName
	}
	if len(b.GeneratedAssets.Names) > 0 {
		return b.GeneratedAssets.Names[0]
	}
	return ""
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
