package models

// Tool identifies a drawing tool applied by a stroke.
type Tool string

const (
	ToolBrush  Tool = "brush"
	ToolEraser Tool = "eraser"
)

// Point is a mask coordinate in image pixel space.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Stroke is one brush or eraser gesture: a polyline of points stamped with
// a disc of the given radius. Strokes are applied in order; applying the
// same stroke list to an empty mask always yields the same mask.
type Stroke struct {
	Tool   Tool    `json:"tool"`
	Radius int     `json:"radius"`
	Points []Point `json:"points"`
}

// AnalyzeURLRequest asks for an analysis of a micrograph fetched by URL,
// with the mask built from the supplied strokes.
type AnalyzeURLRequest struct {
	URL     string   `json:"url" binding:"required,url"`
	Strokes []Stroke `json:"strokes,omitempty"`
}

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
