package main

import (
	"fmt"
	"io"
	"time"

	"github.com/Carmen-Shannon/oxy-trace/engine/profiler"
)

func displayFrameStats(w io.Writer, total profiler.Stats, counter uint32, elapsed time.Duration) {
	mean := total.Mean()
	table := newTable(w, "Frames", "Dispatched", "Skipped", "Failed", "Uploads", "Bytes", "Extract", "Stage", "Bind", "Dispatch")
	table.Append([]string{
		fmt.Sprint(total.Frames),
		fmt.Sprint(total.Dispatched),
		fmt.Sprint(total.Skipped),
		fmt.Sprint(total.Failed),
		fmt.Sprint(total.Uploads),
		fmt.Sprint(total.BytesUploaded),
		mean.Extract.String(),
		mean.Stage.String(),
		mean.Bind.String(),
		mean.Dispatch.String(),
	})
	table.SetFooter([]string{"", "", "", "", "", "", "", "COUNTER", fmt.Sprint(counter), elapsed.Round(time.Millisecond).String()})
	table.Render()
}
