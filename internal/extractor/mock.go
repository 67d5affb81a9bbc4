package extractor

import "context"

// MockProvider is a test double returning a fixed descriptor or error.
type MockProvider struct {
	Descriptor   []float32
	ExtractError error
	Calls        int
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) Extract(ctx context.Context, imageData []byte) ([]float32, error) {
	m.Calls++
	if m.ExtractError != nil {
		return nil, m.ExtractError
	}
	return m.Descriptor, nil
}
