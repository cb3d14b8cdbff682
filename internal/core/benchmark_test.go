package core

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
)

// payrollCSV builds an export with n data rows, every tenth row blank.
func payrollCSV(n int) string {
	var sb strings.Builder
	sb.WriteString("Hours Per Week,Team Member,Department Code,Vacation Scheduled Time Off,Wage Rate,SSN\n")
	for i := 0; i < n; i++ {
		if i%10 == 9 {
			fmt.Fprintf(&sb, ",Blank Row%d,D1,,,\n", i)
			continue
		}
		fmt.Fprintf(&sb, "%d,First%d Last%d,D%d,0,%d.50,%03d-45-%04d\n", 20+i%20, i, i, i%7, 15+i%10, i%1000, i%10000)
	}
	return sb.String()
}

// ============================================================================
// Transform Benchmarks
// ============================================================================

// BenchmarkCensorSSN benchmarks SSN masking, called once per row.
func BenchmarkCensorSSN(b *testing.B) {
	inputs := []string{"123-45-6789", "", "123456789", "XXX-XX-6789"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, in := range inputs {
			CensorSSN(in)
		}
	}
}

// BenchmarkTransformName benchmarks name reordering.
func BenchmarkTransformName(b *testing.B) {
	inputs := []string{"Jane Doe", "Mary Ann Smith", "  K   Compton ", "Cher"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, in := range inputs {
			TransformName(in)
		}
	}
}

// BenchmarkPipelineTransform benchmarks the full transform stage on 10k rows.
func BenchmarkPipelineTransform(b *testing.B) {
	res, err := DecodeCSV(strings.NewReader(payrollCSV(10000)))
	if err != nil {
		b.Fatal(err)
	}
	p := NewPipeline(DefaultRules(), discardLogger())

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Transform(res)
	}
}

// ============================================================================
// Codec Benchmarks
// ============================================================================

// BenchmarkDecodeCSV benchmarks decoding a 10k row export.
func BenchmarkDecodeCSV(b *testing.B) {
	data := payrollCSV(10000)

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := DecodeCSV(strings.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkEncodeCSV benchmarks encoding 10k rows plus the trailer.
func BenchmarkEncodeCSV(b *testing.B) {
	res, err := DecodeCSV(strings.NewReader(payrollCSV(10000)))
	if err != nil {
		b.Fatal(err)
	}
	rows, _ := NewPipeline(DefaultRules(), discardLogger()).Transform(res)
	export := Augment(rows)
	enc := NewEncoder()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := enc.EncodeCSV(io.Discard, export); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkEncodeXLSX benchmarks the workbook export, which dominates
// download latency for large files.
func BenchmarkEncodeXLSX(b *testing.B) {
	res, err := DecodeCSV(strings.NewReader(payrollCSV(1000)))
	if err != nil {
		b.Fatal(err)
	}
	rows, _ := NewPipeline(DefaultRules(), discardLogger()).Transform(res)
	export := Augment(rows)
	enc := NewEncoder()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		if err := enc.EncodeXLSX(&buf, export); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Service Benchmarks
// ============================================================================

// BenchmarkServiceProcess benchmarks an upload end to end, excluding export.
func BenchmarkServiceProcess(b *testing.B) {
	data := payrollCSV(10000)
	svc := NewService(ServiceOptions{Logger: discardLogger()})

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.Process(b.Context(), "bench.csv", strings.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}
