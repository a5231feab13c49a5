package detector

// Preset hands in image coordinates (Y grows downward), indexed like
// MediaPipe: wrist, then thumb, index, middle, ring and pinky from base to tip.
var (
	pointUpTriples = [NumLandmarks][3]float64{
		{0.50, 0.80, 0},
		{0.55, 0.76, -0.01}, {0.58, 0.71, -0.02}, {0.56, 0.67, -0.03}, {0.53, 0.66, -0.03},
		{0.55, 0.68, 0}, {0.55, 0.55, 0}, {0.55, 0.45, 0}, {0.55, 0.36, 0},
		{0.50, 0.68, -0.02}, {0.50, 0.66, -0.05}, {0.50, 0.72, -0.04}, {0.50, 0.74, -0.02},
		{0.45, 0.70, -0.02}, {0.45, 0.68, -0.05}, {0.45, 0.73, -0.04}, {0.45, 0.75, -0.02},
		{0.40, 0.72, -0.02}, {0.40, 0.70, -0.05}, {0.40, 0.74, -0.04}, {0.40, 0.76, -0.02},
	}

	openPalmTriples = [NumLandmarks][3]float64{
		{0.50, 0.80, 0},
		{0.55, 0.75, 0.02}, {0.62, 0.70, 0.03}, {0.68, 0.65, 0.03}, {0.73, 0.60, 0.03},
		{0.55, 0.68, 0}, {0.57, 0.55, 0}, {0.58, 0.45, 0}, {0.58, 0.35, 0},
		{0.50, 0.66, 0}, {0.50, 0.52, 0}, {0.50, 0.40, 0}, {0.50, 0.28, 0},
		{0.45, 0.68, 0}, {0.43, 0.55, 0}, {0.42, 0.45, 0}, {0.42, 0.35, 0},
		{0.40, 0.70, 0}, {0.37, 0.60, 0}, {0.35, 0.50, 0}, {0.34, 0.42, 0},
	}
)

func preset(t *[NumLandmarks][3]float64) HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}
	for i, p := range t {
		h.Points[i] = Point3D{X: p[0], Y: p[1], Z: p[2]}
	}
	return h
}

// PointUpLandmarks is a right hand with the index finger raised and the
// other fingers curled.
func PointUpLandmarks() HandLandmarks {
	return preset(&pointUpTriples)
}

// PointLeftLandmarks is PointUpLandmarks turned a quarter turn about the
// wrist so the index finger points at the left edge of the frame.
func PointLeftLandmarks() HandLandmarks {
	h := PointUpLandmarks()
	w := h.Points[Wrist]
	for i, p := range h.Points {
		h.Points[i] = Point3D{X: w.X + (p.Y - w.Y), Y: w.Y - (p.X - w.X), Z: p.Z}
	}
	return h
}

// OpenPalmLandmarks has every finger extended.
func OpenPalmLandmarks() HandLandmarks {
	return preset(&openPalmTriples)
}
