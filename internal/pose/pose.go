package pose

// MediaPipe Pose landmark ids used by the built-in exercises.
const (
	LeftShoulder  = 11
	RightShoulder = 12
	LeftElbow     = 13
	RightElbow    = 14
	LeftWrist     = 15
	RightWrist    = 16
	LeftHip       = 23
	RightHip      = 24
	LeftKnee      = 25
	RightKnee     = 26
	LeftAnkle     = 27
	RightAnkle    = 28
)

// Point is a pixel coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Landmark is a single tracked joint as delivered by a pose source.
type Landmark struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Frame is one tick's landmark snapshot keyed by landmark id.
// A nil Frame means the source had no sample for the tick.
type Frame map[int]Point

// NewFrame builds a Frame from a landmark list. Later duplicates win.
func NewFrame(landmarks []Landmark) Frame {
	f := make(Frame, len(landmarks))
	for _, lm := range landmarks {
		f[lm.ID] = Point{X: lm.X, Y: lm.Y}
	}
	return f
}

// Lookup returns the points for the given ids in order. ok is false if any
// id is absent.
func (f Frame) Lookup(ids ...int) (pts []Point, ok bool) {
	pts = make([]Point, len(ids))
	for i, id := range ids {
		p, found := f[id]
		if !found {
			return nil, false
		}
		pts[i] = p
	}
	return pts, true
}
