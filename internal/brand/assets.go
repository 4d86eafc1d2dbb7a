package brand

import "strings"

// Default colours used when the lookup returns fewer than three
const (
	DefaultPrimaryColor   = "#000000"
	DefaultSecondaryColor = "#ffffff"
	DefaultTertiaryColor  = "#cccccc"
)

// Assets is the presentation data extracted from a brand lookup
type Assets struct {
	Name        string `json:"brand_name"`
	Description string `json:"brand_description"`
	Slogan      string `json:"brand_slogan"`
	Domain      string `json:"brand_domain"`

	PrimaryColor   string  `json:"primary_color"`
	SecondaryColor string  `json:"secondary_color"`
	TertiaryColor  string  `json:"tertiary_color"`
	Colors         []Color `json:"all_colors"`

	LogoURL    string `json:"primary_logo_url"`
	LogoType   string `json:"primary_logo_type"`
	LogoMode   string `json:"primary_logo_mode"`
	LogoWidth  int    `json:"primary_logo_width"`
	LogoHeight int    `json:"primary_logo_height"`
	Logos      []Logo `json:"all_logos"`

	BackdropURL    string `json:"primary_backdrop_url"`
	BackdropWidth  int    `json:"primary_backdrop_width"`
	BackdropHeight int    `json:"primary_backdrop_height"`

	TwitterURL   string `json:"twitter_url"`
	InstagramURL string `json:"instagram_url"`
	LinkedInURL  string `json:"linkedin_url"`

	Industry    string `json:"industry"`
	Subindustry string `json:"subindustry"`
}

// Response is the brand lookup payload
type Response struct {
	Status string `json:"status"`
	Brand  Brand  `json:"brand"`
}

// Brand is the "brand" object of the lookup payload
type Brand struct {
	Domain      string     `json:"domain"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Slogan      string     `json:"slogan"`
	Colors      []Color    `json:"colors"`
	Logos       []Logo     `json:"logos"`
	Backdrops   []Backdrop `json:"backdrops"`
	Socials     []Social   `json:"socials"`
	Industries  struct {
		EIC []Industry `json:"eic"`
	} `json:"industries"`
}

type Color struct {
	Hex  string `json:"hex"`
	Name string `json:"name,omitempty"`
}

type Resolution struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio,omitempty"`
}

type Logo struct {
	URL        string     `json:"url"`
	Type       string     `json:"type"` // logo, icon
	Mode       string     `json:"mode"` // light, dark, has_opaque_background
	Resolution Resolution `json:"resolution"`
}

type Backdrop struct {
	URL        string     `json:"url"`
	Resolution Resolution `json:"resolution"`
}

type Social struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type Industry struct {
	Industry    string `json:"industry"`
	Subindustry string `json:"subindustry"`
}

var logoExtensions = []string{".png", ".jpg", ".jpeg"}

// ParseAssets picks colours, logo, backdrop, socials and industry from a lookup payload
func ParseAssets(resp Response) Assets {
	b := resp.Brand
	a := Assets{
		Name:           b.Title,
		Description:    b.Description,
		Slogan:         b.Slogan,
		Domain:         b.Domain,
		PrimaryColor:   colorAt(b.Colors, 0, DefaultPrimaryColor),
		SecondaryColor: colorAt(b.Colors, 1, DefaultSecondaryColor),
		TertiaryColor:  colorAt(b.Colors, 2, DefaultTertiaryColor),
		Colors:         b.Colors,
		Logos:          b.Logos,
		TwitterURL:     social(b.Socials, "x"),
		InstagramURL:   social(b.Socials, "instagram"),
		LinkedInURL:    social(b.Socials, "linkedin"),
	}

	if logo, ok := primaryLogo(b.Logos); ok {
		a.LogoURL = logo.URL
		a.LogoType = logo.Type
		a.LogoMode = logo.Mode
		a.LogoWidth = logo.Resolution.Width
		a.LogoHeight = logo.Resolution.Height
	}

	if backdrop, ok := widestBackdrop(b.Backdrops); ok {
		a.BackdropURL = backdrop.URL
		a.BackdropWidth = backdrop.Resolution.Width
		a.BackdropHeight = backdrop.Resolution.Height
	}

	if len(b.Industries.EIC) > 0 {
		a.Industry = b.Industries.EIC[0].Industry
		a.Subindustry = b.Industries.EIC[0].Subindustry
	}

	return a
}

func colorAt(colors []Color, i int, fallback string) string {
	if i < len(colors) {
		return colors[i].Hex
	}
	return fallback
}

func isRasterLogo(l Logo) bool {
	u := strings.ToLower(l.URL)
	for _, ext := range logoExtensions {
		if strings.HasSuffix(u, ext) {
			return true
		}
	}
	return false
}

// primaryLogo prefers a raster "logo", then any raster image
func primaryLogo(logos []Logo) (Logo, bool) {
	for _, l := range logos {
		if l.Type == "logo" && isRasterLogo(l) {
			return l, true
		}
	}
	for _, l := range logos {
		if isRasterLogo(l) {
			return l, true
		}
	}
	return Logo{}, false
}

// widestBackdrop returns the first backdrop with the greatest width
func widestBackdrop(backdrops []Backdrop) (Backdrop, bool) {
	if len(backdrops) == 0 {
		return Backdrop{}, false
	}
	best := backdrops[0]
	for _, b := range backdrops[1:] {
		if b.Resolution.Width > best.Resolution.Width {
			best = b
		}
	}
	return best, true
}

func social(socials []Social, kind string) string {
	for _, s := range socials {
		if s.Type == kind {
			return s.URL
		}
	}
	return ""
}
