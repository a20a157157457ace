package scripting

import (
	"context"
	"strings"
	"testing"

	"github.com/wudi/textflow/builder"
	"github.com/wudi/textflow/flow"
	"github.com/wudi/textflow/ir/semantic"
)

func TestGojaEngine_Execute(t *testing.T) {
	eng := NewEngine()
	val, err := eng.Execute(context.Background(), "6 * 7")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if n, ok := val.(int64); !ok || n != 42 {
		t.Fatalf("Execute = %v (%T), want 42", val, val)
	}
}

func TestGojaEngine_ExecuteCancelled(t *testing.T) {
	eng := NewEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := eng.Execute(ctx, "1 + 1"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestGojaEngine_ExecuteScriptError(t *testing.T) {
	eng := NewEngine()
	if _, err := eng.Execute(context.Background(), "not valid javascript {"); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestPageHook_RequiresOnPage(t *testing.T) {
	if _, err := PageHook(NewEngine(), "var x = 1;"); err == nil {
		t.Fatal("expected error when onPage is missing")
	}
	if _, err := PageHook(NewEngine(), "function broken( {"); err == nil {
		t.Fatal("expected error for invalid script")
	}
}

func headerStrings(p *semantic.Page) []string {
	var out []string
	for _, cs := range p.Contents {
		for _, op := range cs.Operations {
			if op.Operator != "Tj" || len(op.Operands) == 0 {
				continue
			}
			if s, ok := op.Operands[0].(semantic.StringOperand); ok {
				if strings.HasPrefix(string(s.Value), "Report") {
					out = append(out, string(s.Value))
				}
			}
		}
	}
	return out
}

func TestPageHook_DrawsRunningHeader(t *testing.T) {
	hook, err := PageHook(NewEngine(), `function onPage(n) { return "Report - page " + n; }`)
	if err != nil {
		t.Fatalf("PageHook failed: %v", err)
	}

	b := builder.NewBuilder()
	e := flow.New(b, flow.OnPage(hook))
	ctx := context.Background()
	if err := e.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	// Fill well past one page so the hook fires on a page break too.
	for i := 0; i < 80; i++ {
		if err := e.AddParagraph(ctx, "filler paragraph to push the cursor down the page"); err != nil {
			t.Fatalf("AddParagraph failed: %v", err)
		}
	}
	if e.PageNumber() < 2 {
		t.Fatalf("expected at least two pages, got %d", e.PageNumber())
	}

	doc, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for i, p := range doc.Pages {
		headers := headerStrings(p)
		if len(headers) != 1 {
			t.Fatalf("page %d carries %d headers, want 1", i+1, len(headers))
		}
		want := "Report - page " + string(rune('1'+i))
		if headers[0] != want {
			t.Fatalf("page %d header %q, want %q", i+1, headers[0], want)
		}
	}
}

func TestPageHook_CursorRestored(t *testing.T) {
	hook, err := PageHook(NewEngine(), `function onPage(n) { return "Report"; }`)
	if err != nil {
		t.Fatalf("PageHook failed: %v", err)
	}
	b := builder.NewBuilder()
	e := flow.New(b, flow.OnPage(hook))
	if err := e.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	m := e.Margins()
	if x, y := e.Page().X(), e.Page().Y(); x != m.Left || y != e.Page().Height()-m.Top {
		t.Fatalf("hook left cursor at (%g, %g)", x, y)
	}
}

func TestPageHook_NoHeaderWhenUndefined(t *testing.T) {
	hook, err := PageHook(NewEngine(), `function onPage(n) {}`)
	if err != nil {
		t.Fatalf("PageHook failed: %v", err)
	}
	b := builder.NewBuilder()
	e := flow.New(b, flow.OnPage(hook))
	if err := e.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	doc, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(doc.Pages[0].Contents) != 0 {
		t.Fatal("undefined return must not draw anything")
	}
}

func TestPageHook_ScriptErrorPropagates(t *testing.T) {
	hook, err := PageHook(NewEngine(), `function onPage(n) { throw new Error("boom"); }`)
	if err != nil {
		t.Fatalf("PageHook failed: %v", err)
	}
	e := flow.New(builder.NewBuilder(), flow.OnPage(hook))
	if err := e.Init(context.Background()); err == nil {
		t.Fatal("expected the script error to propagate through Init")
	}
}
