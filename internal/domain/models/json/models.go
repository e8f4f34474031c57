// Package models provides the JSON wire structures of the Rebrandly links API.
package models

// RebrandlyDomain - domain a link was created on.
type RebrandlyDomain struct {
	// ID: provider domain identifier.
	ID string `json:"id"`
	// FullName: host name, e.g. "rebrand.ly".
	FullName string `json:"fullName"`
}

// RebrandlyLink - one element of the GET /v1/links response array.
type RebrandlyLink struct {
	// Title: optional human title.
	Title *string `json:"title,omitempty"`
	// Favourite: optional favourite flag.
	Favourite *bool `json:"favourite,omitempty"`
	// Status: "active" for live links; missing means active.
	Status *string `json:"status,omitempty"`
	// ID: link identifier, used as the pagination cursor.
	ID string `json:"id"`
	// Slashtag: path part of the short link, without the leading slash.
	Slashtag string `json:"slashtag"`
	// Destination: target URL.
	Destination string `json:"destination"`
	// CreatedAt: creation timestamp as sent by the API.
	CreatedAt string `json:"createdAt"`
	// UpdatedAt: last update timestamp as sent by the API.
	UpdatedAt string `json:"updatedAt"`
	// ShortURL: full short link, e.g. "rebrand.ly/abc".
	ShortURL string `json:"shortUrl"`
	// Domain: domain the short link lives on.
	Domain RebrandlyDomain `json:"domain"`
}

// Active reports whether the link should be imported.
func (l RebrandlyLink) Active() bool {
	return l.Status == nil || *l.Status == "active"
}
