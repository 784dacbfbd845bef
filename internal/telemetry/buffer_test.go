package telemetry

import "testing"

func TestStateBufferZeroFill(t *testing.T) {
	b := NewStateBuffer(1, 10, 3)
	if b.At(0, 5, 2) != 0 {
		t.Error("never-written cell should read zero")
	}
}

func TestStateBufferLastWriteWins(t *testing.T) {
	b := NewStateBuffer(1, 10, 2)

	if !b.SetRow(0, 4, []float64{1.0, 2.0}) {
		t.Fatal("first write rejected")
	}
	if !b.SetRow(0, 4, []float64{3.0, 4.0}) {
		t.Fatal("second write rejected")
	}

	if b.At(0, 4, 0) != 3.0 || b.At(0, 4, 1) != 4.0 {
		t.Errorf("expected latest values, got %f %f", b.At(0, 4, 0), b.At(0, 4, 1))
	}
}

func TestStateBufferOutOfRangeRejected(t *testing.T) {
	b := NewStateBuffer(2, 10, 2)

	cases := []struct {
		name      string
		env, step int
		row       []float64
	}{
		{"step past capacity", 0, 10, []float64{1, 2}},
		{"negative step", 0, -1, []float64{1, 2}},
		{"env past count", 2, 0, []float64{1, 2}},
		{"wrong row width", 0, 0, []float64{1}},
	}

	for _, tc := range cases {
		if b.SetRow(tc.env, tc.step, tc.row) {
			t.Errorf("%s: write should be rejected", tc.name)
		}
	}

	for s := 0; s < 10; s++ {
		for j := 0; j < 2; j++ {
			if b.At(0, s, j) != 0 {
				t.Fatal("rejected writes must leave buffer untouched")
			}
		}
	}
}

func TestStateBufferSeries(t *testing.T) {
	b := NewStateBuffer(2, 5, 2)
	for s := 0; s < 5; s++ {
		b.SetRow(1, s, []float64{float64(s), float64(s) * 10})
	}

	series := b.Series(1, 1)
	if len(series) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(series))
	}
	for s := range series {
		if series[s] != float64(s)*10 {
			t.Errorf("sample %d: expected %f, got %f", s, float64(s)*10, series[s])
		}
	}

	// Series of the other env is untouched.
	for _, v := range b.Series(0, 1) {
		if v != 0 {
			t.Fatal("env 0 should be all zeros")
		}
	}
}

func TestStateBufferEnvIsolation(t *testing.T) {
	b := NewStateBuffer(3, 4, 1)
	b.SetRow(1, 2, []float64{9.0})

	if b.At(0, 2, 0) != 0 || b.At(2, 2, 0) != 0 {
		t.Error("write to one env leaked into another")
	}
	if b.At(1, 2, 0) != 9.0 {
		t.Error("write lost")
	}
}
