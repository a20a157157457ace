package writer

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wudi/textflow/ir/semantic"
	"github.com/wudi/textflow/observability"
)

type impl struct{}

func (w *impl) Write(ctx context.Context, doc *semantic.Document, out io.Writer, cfg Config) error {
	if doc == nil {
		return fmt.Errorf("writer: nil document")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = observability.NopTracer()
	}
	_, span := tracer.StartSpan(ctx, "writer.Write")
	start := time.Now()
	defer func() {
		span.SetTag(observability.MetricPageCount, len(doc.Pages))
		span.SetTag(observability.MetricWriteDuration, time.Since(start))
		span.Finish()
	}()

	// Plan object numbers: catalog, page tree, fonts (with optional
	// descriptor and font file), then per page a content stream and the page
	// itself, finally the info dictionary.
	next := 1
	alloc := func() int { n := next; next++; return n }

	catalogNum := alloc()
	pagesNum := alloc()

	fontByRes := make(map[string]*semantic.Font)
	for _, p := range doc.Pages {
		if p.Resources == nil {
			continue
		}
		for name, f := range p.Resources.Fonts {
			fontByRes[name] = f
		}
	}
	resNames := make([]string, 0, len(fontByRes))
	for name := range fontByRes {
		resNames = append(resNames, name)
	}
	sort.Strings(resNames)

	fontNums := make(map[string]int, len(resNames))
	descNums := make(map[string]int)
	fileNums := make(map[string]int)
	for _, name := range resNames {
		fontNums[name] = alloc()
		if len(fontByRes[name].FontFile) > 0 {
			descNums[name] = alloc()
			fileNums[name] = alloc()
		}
	}

	contentNums := make([]int, len(doc.Pages))
	pageNums := make([]int, len(doc.Pages))
	for i := range doc.Pages {
		contentNums[i] = alloc()
		pageNums[i] = alloc()
	}

	infoNum := 0
	if doc.Info != nil {
		infoNum = alloc()
	}

	bodies := make(map[int][]byte)

	var catalog bytes.Buffer
	fmt.Fprintf(&catalog, "<</Type /Catalog /Pages %d 0 R>>\n", pagesNum)
	bodies[catalogNum] = catalog.Bytes()

	var pages bytes.Buffer
	pages.WriteString("<</Type /Pages /Count ")
	pages.WriteString(strconv.Itoa(len(doc.Pages)))
	pages.WriteString(" /Kids [")
	for i, n := range pageNums {
		if i > 0 {
			pages.WriteByte(' ')
		}
		fmt.Fprintf(&pages, "%d 0 R", n)
	}
	pages.WriteString("]>>\n")
	bodies[pagesNum] = pages.Bytes()

	for _, name := range resNames {
		f := fontByRes[name]
		var fb bytes.Buffer
		fmt.Fprintf(&fb, "<</Type /Font /Subtype /%s /BaseFont /%s", f.Subtype, f.BaseFont)
		if f.Encoding != "" {
			fmt.Fprintf(&fb, " /Encoding /%s", f.Encoding)
		}
		if n, ok := descNums[name]; ok {
			fmt.Fprintf(&fb, " /FontDescriptor %d 0 R", n)
		}
		fb.WriteString(">>\n")
		bodies[fontNums[name]] = fb.Bytes()

		if n, ok := descNums[name]; ok {
			var db bytes.Buffer
			fmt.Fprintf(&db, "<</Type /FontDescriptor /FontName /%s /Flags 4", f.BaseFont)
			db.WriteString(" /ItalicAngle 0 /Ascent 750 /Descent -250 /CapHeight 700 /StemV 80")
			db.WriteString(" /FontBBox [-200 -250 1000 950]")
			fmt.Fprintf(&db, " /FontFile2 %d 0 R>>\n", fileNums[name])
			bodies[n] = db.Bytes()
			bodies[fileNums[name]] = streamBody(f.FontFile, "", fmt.Sprintf("/Length1 %d", len(f.FontFile)))
		}
	}

	for i, p := range doc.Pages {
		var content []byte
		for _, cs := range p.Contents {
			content = append(content, serializeContent(cs.Operations)...)
		}
		filter := ""
		if cfg.ContentFilter == FilterFlate {
			var zb bytes.Buffer
			zw := zlib.NewWriter(&zb)
			if _, err := zw.Write(content); err != nil {
				return fmt.Errorf("writer: compress content: %w", err)
			}
			if err := zw.Close(); err != nil {
				return fmt.Errorf("writer: compress content: %w", err)
			}
			content = zb.Bytes()
			filter = "/Filter /FlateDecode"
		}
		bodies[contentNums[i]] = streamBody(content, filter, "")

		var pb bytes.Buffer
		fmt.Fprintf(&pb, "<</Type /Page /Parent %d 0 R", pagesNum)
		fmt.Fprintf(&pb, " /MediaBox [%s %s %s %s]",
			formatNumber(p.MediaBox.LLX), formatNumber(p.MediaBox.LLY),
			formatNumber(p.MediaBox.URX), formatNumber(p.MediaBox.URY))
		pb.WriteString(" /Resources <</Font <<")
		if p.Resources != nil {
			names := make([]string, 0, len(p.Resources.Fonts))
			for name := range p.Resources.Fonts {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(&pb, "/%s %d 0 R ", name, fontNums[name])
			}
		}
		pb.WriteString(">>>>")
		fmt.Fprintf(&pb, " /Contents %d 0 R>>\n", contentNums[i])
		bodies[pageNums[i]] = pb.Bytes()
	}

	if infoNum != 0 {
		var ib bytes.Buffer
		ib.WriteString("<<")
		writeInfoEntry(&ib, "Title", doc.Info.Title)
		writeInfoEntry(&ib, "Author", doc.Info.Author)
		writeInfoEntry(&ib, "Creator", doc.Info.Creator)
		writeInfoEntry(&ib, "Producer", doc.Info.Producer)
		ib.WriteString(">>\n")
		bodies[infoNum] = ib.Bytes()
	}

	// Serialize objects in numeric order, tracking offsets for the xref.
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")
	offsets := make([]int64, next)
	for num := 1; num < next; num++ {
		offsets[num] = int64(buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n", num)
		buf.Write(bodies[num])
		buf.WriteString("endobj\n")
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", next)
	buf.WriteString("0000000000 65535 f \n")
	for num := 1; num < next; num++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[num])
	}
	fmt.Fprintf(&buf, "trailer\n<</Size %d /Root %d 0 R", next, catalogNum)
	if infoNum != 0 {
		fmt.Fprintf(&buf, " /Info %d 0 R", infoNum)
	}
	fmt.Fprintf(&buf, ">>\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	_, err := out.Write(buf.Bytes())
	return err
}

func streamBody(data []byte, filter, extra string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "<</Length %d", len(data))
	if filter != "" {
		b.WriteByte(' ')
		b.WriteString(filter)
	}
	if extra != "" {
		b.WriteByte(' ')
		b.WriteString(extra)
	}
	b.WriteString(">>\nstream\n")
	b.Write(data)
	b.WriteString("\nendstream\n")
	return b.Bytes()
}

func serializeContent(ops []semantic.Operation) []byte {
	var buf bytes.Buffer
	for _, op := range ops {
		for _, operand := range op.Operands {
			buf.Write(serializeOperand(operand))
			buf.WriteByte(' ')
		}
		buf.WriteString(op.Operator)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func serializeOperand(o semantic.Operand) []byte {
	switch v := o.(type) {
	case semantic.NameOperand:
		return []byte("/" + v.Value)
	case semantic.NumberOperand:
		return []byte(formatNumber(v.Value))
	case semantic.StringOperand:
		return escapeString(v.Value)
	default:
		return []byte("null")
	}
}

func escapeString(s []byte) []byte {
	var b bytes.Buffer
	b.WriteByte('(')
	for _, c := range s {
		switch c {
		case '(', ')', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(')')
	return b.Bytes()
}

// formatNumber renders a number without exponent notation, trimming to a
// precision that keeps content streams compact.
func formatNumber(f float64) string {
	s := strconv.FormatFloat(f, 'f', 4, 64)
	s = trimTrailingZeros(s)
	return s
}

func trimTrailingZeros(s string) string {
	if !strings.ContainsRune(s, '.') {
		return s
	}
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i--
	}
	return s[:i]
}

func writeInfoEntry(b *bytes.Buffer, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "/%s ", key)
	b.Write(escapeString([]byte(value)))
	b.WriteByte(' ')
}
