package weather

import "strings"

// ViewState is which of the three mutually exclusive UI states is active.
type ViewState string

const (
	ViewIdle    ViewState = "idle"
	ViewError   ViewState = "error"
	ViewSuccess ViewState = "success"
)

// IconResolver turns a provider icon id into an image URL.
type IconResolver func(icon string) string

// DefaultIconBase is where the provider hosts its condition icons.
const DefaultIconBase = "https://openweathermap.org/img/wn"

// IconURL returns a resolver for icons hosted under base.
func IconURL(base string) IconResolver {
	base = strings.TrimRight(base, "/")
	return func(icon string) string {
		return base + "/" + icon + "@2x.png"
	}
}

// Panel is the weather card shown on success.
type Panel struct {
	Location    string  `json:"location"`
	Country     string  `json:"country"`
	Description string  `json:"description"`
	TempC       float64 `json:"temp_c"`
	Humidity    int     `json:"humidity"`
	IconURL     string  `json:"icon_url"`
	IconAlt     string  `json:"icon_alt"`
}

// View is everything the page needs to render one outcome.
type View struct {
	State          ViewState    `json:"state"`
	ErrorText      string       `json:"error,omitempty"`
	Panel          *Panel       `json:"panel,omitempty"`
	Animation      AnimationTag `json:"animation"`
	ContainerClass string       `json:"container_class"`
}

// Derive computes the view for an outcome. It has no side effects, so
// re-rendering the same outcome always yields the same view.
func Derive(o Outcome, icons IconResolver) View {
	if f, ok := o.Failure(); ok {
		return View{State: ViewError, ErrorText: f.Message, Animation: AnimationNone}
	}
	r, ok := o.Record()
	if !ok {
		return View{State: ViewIdle, Animation: AnimationNone}
	}

	if icons == nil {
		icons = IconURL(DefaultIconBase)
	}
	cond := r.Primary()
	tag := AnimationFor(r)
	return View{
		State: ViewSuccess,
		Panel: &Panel{
			Location:    r.Location,
			Country:     r.Country,
			Description: cond.Description,
			TempC:       r.TempC,
			Humidity:    r.Humidity,
			IconURL:     icons(cond.Icon),
			IconAlt:     cond.Description,
		},
		Animation:      tag,
		ContainerClass: tag.CSSClass(),
	}
}
