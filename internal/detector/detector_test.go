package detector

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestHandLandmarks_Normalize(t *testing.T) {
	t.Run("wrist at origin after normalization", func(t *testing.T) {
		hand := HandLandmarks{
			Handedness: "Right",
			Score:      0.9,
		}

		hand.Points[Wrist] = Point3D{X: 100.0, Y: 200.0, Z: 50.0}
		for i := 1; i < NumLandmarks; i++ {
			hand.Points[i] = Point3D{
				X: 100.0 + float64(i)*10.0,
				Y: 200.0 + float64(i)*5.0,
				Z: 50.0 + float64(i)*2.0,
			}
		}

		normalized := hand.Normalize()

		wrist := normalized.Points[Wrist]
		if math.Abs(wrist.X) > epsilon || math.Abs(wrist.Y) > epsilon || math.Abs(wrist.Z) > epsilon {
			t.Errorf("expected wrist at origin, got %+v", wrist)
		}

		if normalized.Handedness != hand.Handedness {
			t.Errorf("expected handedness %s, got %s", hand.Handedness, normalized.Handedness)
		}
		if normalized.Score != hand.Score {
			t.Errorf("expected score %f, got %f", hand.Score, normalized.Score)
		}
	})

	t.Run("distance from wrist to scale reference is 1.0", func(t *testing.T) {
		hand := HandLandmarks{}

		hand.Points[Wrist] = Point3D{X: 10.0, Y: 20.0, Z: 5.0}
		hand.Points[ScaleReference] = Point3D{X: 13.0, Y: 24.0, Z: 5.0} // distance = 5.0
		hand.Points[MiddleMCP] = Point3D{X: 20.0, Y: 20.0, Z: 5.0}

		normalized := hand.Normalize()

		ref := normalized.Points[ScaleReference]
		distance := math.Sqrt(ref.X*ref.X + ref.Y*ref.Y + ref.Z*ref.Z)
		if math.Abs(distance-1.0) > epsilon {
			t.Errorf("expected distance to scale reference 1.0, got %f", distance)
		}

		// MiddleMCP sat 10 units away, so it lands at 2.0.
		if math.Abs(normalized.Points[MiddleMCP].X-2.0) > epsilon {
			t.Errorf("expected middle MCP X 2.0, got %f", normalized.Points[MiddleMCP].X)
		}
	})

	t.Run("uses middle DIP as scale reference", func(t *testing.T) {
		if ScaleReference != 11 {
			t.Errorf("ScaleReference = %d, want 11", ScaleReference)
		}
	})

	t.Run("nil hand returns nil", func(t *testing.T) {
		var hand *HandLandmarks
		if hand.Normalize() != nil {
			t.Error("expected nil result for nil input")
		}
	})

	t.Run("zero scale returns translated only", func(t *testing.T) {
		hand := HandLandmarks{}
		hand.Points[Wrist] = Point3D{X: 10.0, Y: 20.0, Z: 5.0}
		hand.Points[ScaleReference] = Point3D{X: 10.0, Y: 20.0, Z: 5.0}
		hand.Points[IndexTip] = Point3D{X: 12.0, Y: 17.0, Z: 5.0}

		normalized := hand.Normalize()

		tip := normalized.Points[IndexTip]
		if math.Abs(tip.X-2.0) > epsilon || math.Abs(tip.Y+3.0) > epsilon {
			t.Errorf("expected index tip translated to (2,-3), got %+v", tip)
		}
		for i, p := range normalized.Points {
			if math.IsNaN(p.X) || math.IsInf(p.X, 0) {
				t.Fatalf("point %d is not finite: %+v", i, p)
			}
		}
	})
}

func TestFromTriples(t *testing.T) {
	t.Run("accepts 21 triples", func(t *testing.T) {
		palm := OpenPalmLandmarks()
		hand, err := FromTriples(palm.Triples())
		if err != nil {
			t.Fatalf("FromTriples() error = %v", err)
		}
		if hand.Points != palm.Points {
			t.Error("round trip through triples changed points")
		}
	})

	t.Run("rejects wrong landmark count", func(t *testing.T) {
		for _, n := range []int{0, 20, 22} {
			triples := make([][]float64, n)
			for i := range triples {
				triples[i] = []float64{0, 0, 0}
			}
			if _, err := FromTriples(triples); !errors.Is(err, ErrLandmarkCount) {
				t.Errorf("n=%d: expected ErrLandmarkCount, got %v", n, err)
			}
		}
	})

	t.Run("rejects short triple", func(t *testing.T) {
		triples := OpenPalmLandmarks().Triples()
		triples[7] = []float64{0.1, 0.2}
		if _, err := FromTriples(triples); !errors.Is(err, ErrTripleSize) {
			t.Errorf("expected ErrTripleSize, got %v", err)
		}
	})
}

func TestFromPoints(t *testing.T) {
	if _, err := FromPoints(make([]Point3D, 5)); !errors.Is(err, ErrLandmarkCount) {
		t.Errorf("expected ErrLandmarkCount, got %v", err)
	}
	if _, err := FromPoints(make([]Point3D, NumLandmarks)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{PointUpLandmarks(), OpenPalmLandmarks()})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(hands))
		}
		if mock.Calls() != 1 {
			t.Errorf("expected 1 call, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestPointUpLandmarks(t *testing.T) {
	landmarks := PointUpLandmarks()

	if landmarks.Points[IndexTip].Y >= landmarks.Points[IndexMCP].Y {
		t.Error("index tip should be above index MCP (lower Y value)")
	}

	curled := []struct {
		name     string
		mcp, tip int
	}{
		{"middle", MiddleMCP, MiddleTip},
		{"ring", RingMCP, RingTip},
		{"pinky", PinkyMCP, PinkyTip},
	}
	for _, f := range curled {
		if extension := landmarks.Points[f.mcp].Y - landmarks.Points[f.tip].Y; extension > 0.05 {
			t.Errorf("%s finger appears extended (extension: %f)", f.name, extension)
		}
	}
}

func TestPointLeftLandmarks(t *testing.T) {
	left := PointLeftLandmarks()
	up := PointUpLandmarks()

	if left.Points[Wrist] != up.Points[Wrist] {
		t.Errorf("wrist moved: %+v", left.Points[Wrist])
	}
	if left.Points[IndexTip].X >= left.Points[Wrist].X {
		t.Error("index tip should be left of the wrist (lower X value)")
	}

	// A rotation keeps every distance to the wrist.
	a, b := up.Normalize(), left.Normalize()
	for i := range a.Points {
		da := a.Points[i].X*a.Points[i].X + a.Points[i].Y*a.Points[i].Y
		db := b.Points[i].X*b.Points[i].X + b.Points[i].Y*b.Points[i].Y
		if math.Abs(da-db) > 1e-9 {
			t.Errorf("point %d: distance changed %f -> %f", i, da, db)
		}
	}
}

func TestParseHands(t *testing.T) {
	t.Run("decodes full hands and drops partial ones", func(t *testing.T) {
		full := `{"x":0.1,"y":0.2,"z":0.3}`
		points := full
		for i := 1; i < NumLandmarks; i++ {
			points += "," + full
		}
		line := []byte(`{"hands":[{"points":[` + points + `],"handedness":"Left","score":0.8},` +
			`{"points":[` + full + `],"handedness":"Right","score":0.9}]}` + "\n")

		hands, err := parseHands(line)
		if err != nil {
			t.Fatalf("parseHands() error = %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(hands))
		}
		if hands[0].Handedness != "Left" || hands[0].Score != 0.8 {
			t.Errorf("unexpected hand metadata: %s %f", hands[0].Handedness, hands[0].Score)
		}
		if hands[0].Points[PinkyTip].Z != 0.3 {
			t.Errorf("expected pinky tip Z 0.3, got %f", hands[0].Points[PinkyTip].Z)
		}
	})

	t.Run("reports helper error", func(t *testing.T) {
		if _, err := parseHands([]byte(`{"error":"model not loaded"}`)); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, err := parseHands([]byte("not json")); err == nil {
			t.Error("expected error")
		}
	})
}
