package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{Out: &buf}
	r.Start(2)
	r.Update(1, "faq/returns.md")
	r.Update(2, "faq/shipping.md")
	r.Finish()

	want := "Indexing 2 documents\n[1/2] faq/returns.md\n[2/2] faq/shipping.md\nIndexing complete\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

type recordingReporter struct {
	starts  []int
	updates []int
}

func (r *recordingReporter) Start(total int)              { r.starts = append(r.starts, total) }
func (r *recordingReporter) Update(current int, _ string) { r.updates = append(r.updates, current) }
func (r *recordingReporter) Finish()                      {}

func TestCallback_StartsOnceAndNeverMovesBackwards(t *testing.T) {
	r := &recordingReporter{}
	cb := Callback(r)
	cb(1, 3, "a")
	cb(3, 3, "c")
	cb(2, 3, "b")

	if len(r.starts) != 1 || r.starts[0] != 3 {
		t.Errorf("Start calls: %v", r.starts)
	}
	if len(r.updates) != 2 || r.updates[1] != 3 {
		t.Errorf("updates: %v", r.updates)
	}
}

func TestCallback_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	cb := Callback(&CIReporter{Out: &buf})

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			cb(n, 20, "doc")
		}(i)
	}
	wg.Wait()

	if got := strings.Count(buf.String(), "Indexing 20 documents"); got != 1 {
		t.Errorf("expected one start line, got %d", got)
	}
	if !strings.Contains(buf.String(), "[20/20]") {
		t.Errorf("missing final update:\n%s", buf.String())
	}
}
