package analyze

// Metrics is the aggregate derived from one run's trace. It is a pure
// function of its inputs: recomputed fresh every run, never cached or
// mutated after construction.
type Metrics struct {
	TotalTasks          int     `json:"total_tasks"`
	FailedTasks         int     `json:"failed_tasks"`
	MalformedTasks      int     `json:"malformed_tasks"`
	TotalComputeTime    float64 `json:"total_compute_time"`
	AvgComputeTime      Value   `json:"avg_compute_time"`
	AvgIOInputTime      Value   `json:"avg_io_input_time"`
	AvgIOOutputTime     Value   `json:"avg_io_output_time"`
	AvgComputeToIORatio Value   `json:"avg_compute_to_io_ratio"`
	TotalBytesRead      int64   `json:"total_bytes_read"`
	TotalBytesWritten   int64   `json:"total_bytes_written"`
	CompletionDate      float64 `json:"completion_date"`
	AvgTaskDuration     Value   `json:"avg_task_duration"`
	CoreAllocations     []int   `json:"core_allocations"`
}

// Options carries inputs that cannot be derived from the trace itself.
type Options struct {
	// FallbackCompletion is the simulator-reported wall-clock completion
	// date, used when the trace holds no usable task records.
	FallbackCompletion float64
}

// Aggregate reduces a trace into Metrics.
//
// Only each task's final attempt feeds timing and byte statistics; earlier
// attempts only mark the task as failed. A task whose final record is
// malformed is excluded from every aggregate and counted in MalformedTasks;
// it never aborts the reduction. Tasks with zero combined I/O time are
// excluded from the compute-to-I/O ratio denominator.
func Aggregate(tasks []TaskInput, opts Options) Metrics {
	m := Metrics{
		TotalTasks:      len(tasks),
		CompletionDate:  opts.FallbackCompletion,
		CoreAllocations: make([]int, 0, len(tasks)),
	}

	var (
		validTasks    int
		sumCompute    float64
		sumIOInput    float64
		sumIOOutput   float64
		sumRatio      float64
		ratioTasks    int
		maxCompletion float64
		sawCompletion bool
	)

	for _, t := range tasks {
		if t.Failed {
			m.FailedTasks++
		}
		if t.Err != nil {
			m.MalformedTasks++
			continue
		}

		validTasks++
		compute := t.Final.ComputeTime()
		ioInput := t.Final.IOInputTime()
		ioOutput := t.Final.IOOutputTime()

		sumCompute += compute
		sumIOInput += ioInput
		sumIOOutput += ioOutput
		if ioInput+ioOutput > 0 {
			sumRatio += compute / (ioInput + ioOutput)
			ratioTasks++
		}

		m.TotalBytesRead += t.Final.BytesRead
		m.TotalBytesWritten += t.Final.BytesWritten
		m.CoreAllocations = append(m.CoreAllocations, t.Final.CoresAllocated)

		if !sawCompletion || t.Final.WriteOutputEnd > maxCompletion {
			maxCompletion = t.Final.WriteOutputEnd
			sawCompletion = true
		}
	}

	m.TotalComputeTime = sumCompute
	if validTasks > 0 {
		m.AvgComputeTime = Defined(sumCompute / float64(validTasks))
		m.AvgIOInputTime = Defined(sumIOInput / float64(validTasks))
		m.AvgIOOutputTime = Defined(sumIOOutput / float64(validTasks))
	}
	if ratioTasks > 0 {
		m.AvgComputeToIORatio = Defined(sumRatio / float64(ratioTasks))
	}
	if sawCompletion {
		m.CompletionDate = maxCompletion
	}
	if succeeded := m.TotalTasks - m.FailedTasks; succeeded > 0 {
		m.AvgTaskDuration = Defined(sumCompute / float64(succeeded))
	}
	return m
}

// PowerWatts derives run-level host power from cumulative energy and the
// workflow completion date. Undefined when the completion date is zero.
func PowerWatts(energyJoules float64, completionDate float64) Value {
	if completionDate == 0 {
		return Undefined()
	}
	return Defined(energyJoules / completionDate)
}
