package domain

// ResponseMatrix is the dense detector response: output channels × input
// energy bins, row-major. After area folding the entries are in cm²; before
// that they are probability-density-like values. Entries that were below the
// compression threshold are exactly zero.
type ResponseMatrix struct {
	OutputChannels int
	InputBins      int
	Data           []float64
}

// NewResponseMatrix allocates a zeroed matrix of the given shape.
func NewResponseMatrix(outputChannels, inputBins int) ResponseMatrix {
	return ResponseMatrix{
		OutputChannels: outputChannels,
		InputBins:      inputBins,
		Data:           make([]float64, outputChannels*inputBins),
	}
}

// At returns the entry for the given output channel and input bin.
func (m ResponseMatrix) At(channel, bin int) float64 {
	return m.Data[channel*m.InputBins+bin]
}

// Set writes the entry for the given output channel and input bin.
func (m ResponseMatrix) Set(channel, bin int, v float64) {
	m.Data[channel*m.InputBins+bin] = v
}

// ScaleColumn multiplies every entry of input bin by a scalar.
func (m ResponseMatrix) ScaleColumn(bin int, s float64) {
	for c := 0; c < m.OutputChannels; c++ {
		m.Data[c*m.InputBins+bin] *= s
	}
}

// Equal reports whether two matrices have identical shape and bit-identical
// entries.
func (m ResponseMatrix) Equal(o ResponseMatrix) bool {
	if m.OutputChannels != o.OutputChannels || m.InputBins != o.InputBins {
		return false
	}
	for i, v := range m.Data {
		if v != o.Data[i] {
			return false
		}
	}
	return true
}
