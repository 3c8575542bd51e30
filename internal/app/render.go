package app

import (
	"fmt"
	"time"

	"github.com/dshills/looper/internal/backend"
	"github.com/dshills/looper/internal/dispatch"
	"github.com/dshills/looper/internal/queue"
)

// Screen rows.
const (
	rowTitle   = 0
	rowModes   = 2
	rowSleep   = rowModes + 7
	rowOutput  = rowSleep + 2
	rowStatus  = rowOutput + 2
	rowStats   = rowStatus + 1
	rowMetrics = rowStats + 1
	rowRender  = rowMetrics + 1
	rowHelp    = rowRender + 2
)

// afterDispatch is the UI dispatcher's after hook. It redraws once per
// message when something changed.
func (app *Application) afterDispatch(_ *queue.Message, _ dispatch.Result) {
	if app.dirty {
		app.render()
	}
}

func (app *Application) render() {
	timer := StartTimer()
	b := app.backend

	b.Clear()
	b.DrawText(0, rowTitle, "looper: hand work back to the UI goroutine", backend.StyleBold)

	for i, m := range Modes() {
		mark := "( )"
		if m == app.selected {
			mark = "(*)"
		}
		pointer := ' '
		if i == app.cursor {
			pointer = '>'
		}
		style := backend.StyleDefault
		if !app.groupEnabled {
			style = backend.StyleDim
		}
		b.DrawText(0, rowModes+i, fmt.Sprintf("%c %c %s %s", pointer, m.Key(), mark, m), style)
	}

	sleepStyle := backend.StyleReverse
	if !app.sleepEnabled || app.busy {
		sleepStyle = backend.StyleDim
	}
	b.DrawText(2, rowSleep, "[ Sleep ]", sleepStyle)

	b.DrawText(2, rowOutput, app.output.Text(), backend.StyleBold)
	b.DrawText(0, rowStatus, app.status, backend.StyleDefault)

	s := app.ui.Stats()
	b.DrawText(0, rowStats, fmt.Sprintf("ui %s  dispatched %d  failed %d  pending %d",
		s.State, s.Dispatched, s.Failed+s.Panicked, s.Pending), backend.StyleDim)

	ms := app.metrics.Snapshot()
	b.DrawText(0, rowMetrics, fmt.Sprintf("hand-offs %d  last %v  avg %v  min %v  max %v",
		ms.HandoffCount, ms.LastHandoff(), ms.AvgHandoff(), ms.MinHandoff(), ms.MaxHandoff()), backend.StyleDim)
	b.DrawText(0, rowRender, fmt.Sprintf("inputs %d (dropped %d)  renders %d  avg %v  up %v",
		ms.InputCount, ms.InputDropped, ms.RenderCount, ms.AvgRender(), ms.Uptime.Round(time.Second)), backend.StyleDim)

	b.DrawText(0, rowHelp, "1-6 pick  up/down/tab move  space pick  s sleep  q quit", backend.StyleUnderline)
	b.Show()

	app.dirty = false
	app.metrics.RecordRender(timer.Elapsed())
}
