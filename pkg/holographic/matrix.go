package holographic

// InterferenceMatrix is a dense symmetric similarity cache over indexed words.
// Cell (i, j) holds Similarity(vector_i, vector_j). The diagonal is never written.
type InterferenceMatrix struct {
	size  int
	cells []float32
}

func newInterferenceMatrix(size int) *InterferenceMatrix {
	return &InterferenceMatrix{
		size:  size,
		cells: make([]float32, size*size),
	}
}

// Size returns the row/column capacity.
func (m *InterferenceMatrix) Size() int {
	return m.size
}

// At returns cell (i, j).
func (m *InterferenceMatrix) At(i, j int) float32 {
	return m.cells[i*m.size+j]
}

// setPair writes v to (i, j) and (j, i).
func (m *InterferenceMatrix) setPair(i, j int, v float32) {
	m.cells[i*m.size+j] = v
	m.cells[j*m.size+i] = v
}

// Similarity is the normalised dot product: sum(a[k]*b[k]) / len(a).
// It is a pure function of its inputs; callers guarantee equal lengths.
func Similarity(a, b []float32) float64 {
	if len(a) == 0 {
		return 0
	}
	var sum float64
	for k := range a {
		sum += float64(a[k]) * float64(b[k])
	}
	return sum / float64(len(a))
}
