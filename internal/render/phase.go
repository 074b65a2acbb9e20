package render

// Phase is a step of the full refresh cycle.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseSyncingTime
	PhaseFetchingWeather
	PhaseFetchingForecast
	PhaseRendering
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSyncingTime:
		return "syncing-time"
	case PhaseFetchingWeather:
		return "fetching-weather"
	case PhaseFetchingForecast:
		return "fetching-forecast"
	case PhaseRendering:
		return "rendering"
	default:
		return "unknown"
	}
}
