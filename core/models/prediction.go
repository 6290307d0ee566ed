package models

// Prediction is one classified sample returned by an endpoint
type Prediction struct {
	Prediction      string             `json:"prediction"`
	PredictionLabel int                `json:"prediction_label"`
	Probabilities   map[string]float64 `json:"probabilities"`
}

// BatchPrediction wraps predictions for a multi-instance request
type BatchPrediction struct {
	Predictions []Prediction `json:"predictions"`
}

// SinglePayload is the request body for one sample
type SinglePayload struct {
	Features []float64 `json:"features"`
}

// BatchPayload is the request body for several samples
type BatchPayload struct {
	Instances [][]float64 `json:"instances"`
}
