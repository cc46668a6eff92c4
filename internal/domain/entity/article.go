// Package entity defines the core domain entities and validation logic for the application.
// It contains the Article aggregate with its country-specific attributes, the Country
// enumeration, and the domain-specific validation errors.
package entity

import "time"

// Article is the aggregate root of the catalog. It exclusively owns its attributes:
// they are created, changed and removed only through the methods below, which keep
// IsApproved and LastChanged consistent with the attribute set.
type Article struct {
	ID            int64
	ArticleNumber int
	Brand         string
	IsBulky       bool
	IsApproved    bool
	LastChanged   time.Time
	// Version is the storage row version used for optimistic concurrency.
	Version    int64
	Attributes []*Attribute
}

// Attribute holds the localized data of an article for one country.
type Attribute struct {
	ID          int64
	Country     Country
	Title       string
	Description string
	Color       string
	LastChange  time.Time
}

// AttributeFields are the mutable fields of an attribute.
type AttributeFields struct {
	Title       string
	Description string
	Color       string
}

// NewArticle creates an unapproved article without attributes.
func NewArticle(articleNumber int, brand string, isBulky bool, now time.Time) *Article {
	return &Article{
		ArticleNumber: articleNumber,
		Brand:         brand,
		IsBulky:       isBulky,
		IsApproved:    false,
		LastChanged:   now,
		Attributes:    []*Attribute{},
	}
}

// Update changes the mutable article fields. Attributes and approval are untouched.
func (a *Article) Update(brand string, isBulky bool, now time.Time) {
	a.Brand = brand
	a.IsBulky = isBulky
	a.LastChanged = now
}

// AttributesFor returns every attribute stored for the given country.
// More than one result means the aggregate is corrupt; callers must treat it as such.
func (a *Article) AttributesFor(c Country) []*Attribute {
	var out []*Attribute
	for _, attr := range a.Attributes {
		if attr.Country == c {
			out = append(out, attr)
		}
	}
	return out
}

// AddAttribute appends a new attribute. Uniqueness per country is checked by the caller.
func (a *Article) AddAttribute(c Country, f AttributeFields, now time.Time) *Attribute {
	attr := &Attribute{
		Country:     c,
		Title:       f.Title,
		Description: f.Description,
		Color:       f.Color,
		LastChange:  now,
	}
	a.Attributes = append(a.Attributes, attr)
	a.refresh(now)
	return attr
}

// UpdateAttribute overwrites the mutable fields of an attribute owned by a.
func (a *Article) UpdateAttribute(attr *Attribute, f AttributeFields, now time.Time) {
	attr.Title = f.Title
	attr.Description = f.Description
	attr.Color = f.Color
	attr.LastChange = now
	a.refresh(now)
}

// RemoveAttribute detaches attr from the article. It reports false if attr is not owned by a.
func (a *Article) RemoveAttribute(attr *Attribute, now time.Time) bool {
	for i, owned := range a.Attributes {
		if owned == attr {
			a.Attributes = append(a.Attributes[:i], a.Attributes[i+1:]...)
			a.refresh(now)
			return true
		}
	}
	return false
}

// HasCompleteAttributes reports whether there is exactly one attribute for every
// country, with no duplicates and no omissions.
func (a *Article) HasCompleteAttributes() bool {
	all := Countries()
	if len(a.Attributes) != len(all) {
		return false
	}
	seen := make(map[Country]int, len(all))
	for _, attr := range a.Attributes {
		seen[attr.Country]++
	}
	for _, c := range all {
		if seen[c] != 1 {
			return false
		}
	}
	return true
}

// refresh is the single place where derived state is recomputed.
func (a *Article) refresh(now time.Time) {
	a.IsApproved = a.HasCompleteAttributes()
	a.LastChanged = now
}

// Clone returns a deep copy of the aggregate.
func (a *Article) Clone() *Article {
	if a == nil {
		return nil
	}
	out := *a
	out.Attributes = make([]*Attribute, 0, len(a.Attributes))
	for _, attr := range a.Attributes {
		c := *attr
		out.Attributes = append(out.Attributes, &c)
	}
	return &out
}
