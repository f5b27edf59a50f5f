package weather

// AnimationTag is the decoration applied to the widget container.
type AnimationTag string

const (
	AnimationNone  AnimationTag = "none"
	AnimationRain  AnimationTag = "rain"
	AnimationSnow  AnimationTag = "snow"
	AnimationWind  AnimationTag = "wind"
	AnimationSun   AnimationTag = "sun"
	AnimationNight AnimationTag = "night"
	AnimationCloud AnimationTag = "cloud"
)

// CSSClass returns the stylesheet class for the tag, empty for AnimationNone.
func (t AnimationTag) CSSClass() string {
	if t == AnimationNone || t == "" {
		return ""
	}
	return string(t) + "-animation"
}

// AnimationFor picks the animation from the first condition code using the
// provider's condition groups (2xx-5xx precipitation, 6xx snow, 7xx atmosphere,
// 800 clear, 80x clouds).
func AnimationFor(r Record) AnimationTag {
	code := r.Primary().Code
	switch {
	case code >= 200 && code < 600:
		return AnimationRain
	case code >= 600 && code < 700:
		return AnimationSnow
	case code >= 700 && code < 800:
		return AnimationWind
	case code == 800:
		if isNight(r) {
			return AnimationNight
		}
		return AnimationSun
	case code > 800:
		return AnimationCloud
	}
	return AnimationNone
}

// isNight uses two literal comparisons rather than an interval test, so
// sunrise > sunset data evaluates the same way.
func isNight(r Record) bool {
	return r.ObservedAt > r.Sunset || r.ObservedAt < r.Sunrise
}
