package estimation

// Model type codes carried on the wire. Unknown codes fall back to open water.
const (
	ModelUnspecified int32 = 0
	ModelOpenWater   int32 = 1
	ModelIce         int32 = 2
)

// Selector resolves model type codes onto artifact paths.
type Selector struct {
	OpenWaterPath string
	IcePath       string
}

// Resolve maps 0 and 1 to the open water artifact, 2 to the ice artifact and anything
// else to the open water default.
func (s Selector) Resolve(code int32) string {
	if code == ModelIce {
		return s.IcePath
	}
	return s.OpenWaterPath
}

// ModelName is a log-friendly label for a model type code.
func ModelName(code int32) string {
	switch code {
	case ModelUnspecified:
		return "unspecified(open-water)"
	case ModelOpenWater:
		return "open-water"
	case ModelIce:
		return "ice"
	default:
		return "unknown(open-water)"
	}
}
