package model

// Batch holds the training corpus in the shape Train consumes: one feature
// vector per sample and the desired output vector at the same index.
type Batch struct {
	Inputs  [][]float64
	Targets [][]float64
}

// Trainer is the training surface the trainer loop drives.
type Trainer interface {
	Train(inputs, targets [][]float64, epochCount int, sseThreshold float64) TrainingResult
	Stats() TrainStats
}
