package spotify

// Token is the provider's token-endpoint response. RefreshToken is only set
// by the authorization-code exchange; the refresh grant does not rotate it.
type Token struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// Image is one entry of a provider image list.
type Image struct {
	URL string `json:"url"`
}

// Profile is the authenticated user's Spotify profile.
type Profile struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Email       string  `json:"email"`
	Images      []Image `json:"images"`
}

// PlaylistSummary is one item of the user's playlist listing.
type PlaylistSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Images      []Image `json:"images"`
	Tracks      struct {
		Total int `json:"total"`
	} `json:"tracks"`
	Public bool `json:"public"`
}

// Artist is one credited artist on a track.
type Artist struct {
	Name string `json:"name"`
}

// TrackObject is the track payload of a playlist entry.
type TrackObject struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	DurationMs int      `json:"duration_ms"`
}

// PlaylistTrack is one entry of a playlist's track listing. Track is nil when
// the underlying track has been removed or is unavailable.
type PlaylistTrack struct {
	Track *TrackObject `json:"track"`
}

type playlistsPage struct {
	Items []PlaylistSummary `json:"items"`
}

type tracksPage struct {
	Items []PlaylistTrack `json:"items"`
}

type tokenErrorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}
