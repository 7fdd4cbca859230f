package main

import (
	"sync"

	"github.com/jonathan/brandbot/internal/observability"
	"github.com/jonathan/brandbot/internal/orchestrator"
)

type feedItem struct {
	label string
	event orchestrator.Event
}

// eventFeed prints orchestrator events from one goroutine so lines from
// concurrent runs do not interleave.
type eventFeed struct {
	printer *observability.Printer
	items   chan feedItem
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newEventFeed(printer *observability.Printer) *eventFeed {
	f := &eventFeed{
		printer: printer,
		items:   make(chan feedItem, 256),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go f.loop()
	return f
}

// forward returns a subscriber that tags events with label.
func (f *eventFeed) forward(label string) func(orchestrator.Event) {
	return func(ev orchestrator.Event) {
		if !printable(ev) {
			return
		}
		select {
		case f.items <- feedItem{label: label, event: ev}:
		case <-f.quit:
		}
	}
}

// printable keeps log lines and the progress update after each stage.
func printable(ev orchestrator.Event) bool {
	switch ev.Kind {
	case orchestrator.EventLog:
		return ev.Log != nil
	case orchestrator.EventProgress:
		return ev.Progress != nil && ev.Assets != nil
	}
	return false
}

func (f *eventFeed) loop() {
	defer close(f.done)
	for {
		select {
		case it := <-f.items:
			f.print(it)
		case <-f.quit:
			for {
				select {
				case it := <-f.items:
					f.print(it)
				default:
					return
				}
			}
		}
	}
}

func (f *eventFeed) print(it feedItem) {
	switch it.event.Kind {
	case orchestrator.EventLog:
		f.printer.PrintLog(it.label, *it.event.Log)
	case orchestrator.EventProgress:
		f.printer.PrintProgress(it.label, *it.event.Progress)
	}
}

// stop prints whatever is queued and stops the feed. Safe to call twice.
func (f *eventFeed) stop() {
	f.once.Do(func() { close(f.quit) })
	<-f.done
}
