package plume

import (
	"context"
	"sync"
)

// EnsembleResult summarizes one world of an ensemble run
type EnsembleResult struct {
	Time        float64
	Steps       int
	Backtracks  int
	Fallbacks   int
	EnergyStart float64
	EnergyEnd   float64
}

// Drift is the relative change of total energy over the run
func (r EnsembleResult) Drift() float64 {
	if r.EnergyStart == 0 {
		return r.EnergyEnd
	}
	return (r.EnergyEnd - r.EnergyStart) / r.EnergyStart
}

// RunEnsemble steps independent worlds on a pool of workers. Each world is only ever
// touched by one goroutine. Cancelling ctx stops every world at its next step.
func RunEnsemble(ctx context.Context, worlds []*World, steps, workers int) ([]EnsembleResult, error) {
	results := make([]EnsembleResult, len(worlds))
	if len(worlds) == 0 {
		return results, nil
	}
	workers = max(1, min(workers, len(worlds)))

	indices := make([]int, len(worlds))
	for i := range indices {
		indices[i] = i
	}

	task(workers, indices, func(i int) {
		w := worlds[i]
		result := EnsembleResult{EnergyStart: w.Energy()}

		for step := 0; step < steps; step++ {
			if ctx.Err() != nil {
				break
			}
			w.Step()
			report := w.LastStep()
			result.Steps++
			result.Backtracks += report.Backtracks
			if report.Fallback {
				result.Fallbacks++
			}
		}

		result.Time = w.Time()
		result.EnergyEnd = w.Energy()
		results[i] = result
	})

	return results, ctx.Err()
}

func task[T any](workersCount int, data []T, fn func(data T)) {
	var wg sync.WaitGroup
	dataSize := len(data)
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(data[i])
			}
		}(min(workerID*chunkSize, dataSize), min((workerID+1)*chunkSize, dataSize))
	}
	wg.Wait()
}
