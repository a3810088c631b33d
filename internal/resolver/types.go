package resolver

// Point is a normalized coordinate from the tracking server. The depth
// component of hand landmarks is accepted on the wire but unused.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Hand is one tracked hand observation: a detected flag, the palm position,
// and up to 21 landmarks.
type Hand struct {
	Detected  bool
	Position  Point
	Landmarks []Point
}

// Ball is one tracked ball observation.
type Ball struct {
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// Handler receives tracking-server pushes. Implementations must be safe to
// call from the client's read loop goroutine.
type Handler interface {
	HandleHands(left, right Hand)
	HandleBalls(balls []Ball)
	HandleControl(x, y float64)
	HandleNavigate(direction string)
}

// envelope is the wire format shared by every message on the socket.
type envelope struct {
	Type string `json:"type"`

	// get_video_url / video_url
	RequestID string `json:"request_id,omitempty"`
	Success   bool   `json:"success,omitempty"`
	URL       string `json:"url,omitempty"`
	Title     string `json:"title,omitempty"`
	Error     string `json:"error,omitempty"`

	// frame
	Hands *handsPayload `json:"hands,omitempty"`
	Balls []Ball        `json:"balls,omitempty"`

	// control
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// navigate
	Direction string `json:"direction,omitempty"`
}

// handsPayload mirrors the tracking server's per-frame hand fields.
type handsPayload struct {
	RightDetected  bool    `json:"right_hand_detected"`
	RightPosition  Point   `json:"right_hand_position"`
	RightLandmarks []Point `json:"right_hand_landmarks"`
	LeftDetected   bool    `json:"left_hand_detected"`
	LeftPosition   Point   `json:"left_hand_position"`
	LeftLandmarks  []Point `json:"left_hand_landmarks"`
}

func (p *handsPayload) left() Hand {
	return Hand{Detected: p.LeftDetected, Position: p.LeftPosition, Landmarks: p.LeftLandmarks}
}

func (p *handsPayload) right() Hand {
	return Hand{Detected: p.RightDetected, Position: p.RightPosition, Landmarks: p.RightLandmarks}
}
