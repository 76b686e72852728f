package docwriter

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/khaihoang/tradedoc_generation_sample/pkg/docconfig"
)

// styleSpec is the cacheable description of a cell style: the carried font,
// an optional alignment, and an optional number format. The zero spec means
// "leave the cell alone".
type styleSpec struct {
	font      *docconfig.FontSpec
	alignment map[string]string
	numFmt    string
	forceText bool
}

func (s styleSpec) empty() bool {
	return s.font == nil && s.alignment == nil && s.numFmt == "" && !s.forceText
}

// key builds the cache key. Equal specs always produce equal keys, so each
// distinct style registers with excelize exactly once per workbook.
func (s styleSpec) key() string {
	var b strings.Builder
	if s.font != nil {
		fmt.Fprintf(&b, "f:%s:%g:%v|", s.font.Name, s.font.Size, s.font.Bold)
	}
	if s.alignment != nil {
		fmt.Fprintf(&b, "a:%s:%s|", s.alignment["horizontal"], s.alignment["vertical"])
	}
	if s.numFmt != "" {
		fmt.Fprintf(&b, "n:%s|", s.numFmt)
	}
	if s.forceText {
		b.WriteString("t|")
	}
	return b.String()
}

// style returns the excelize style id for a spec, creating and caching it
// on first use. A zero spec yields style id 0, which callers skip.
func (w *Writer) style(spec styleSpec) (int, error) {
	if spec.empty() {
		return 0, nil
	}
	key := spec.key()
	if id, ok := w.styleCache[key]; ok {
		return id, nil
	}

	style := &excelize.Style{}
	if spec.font != nil && (spec.font.Name != "" || spec.font.Size > 0 || spec.font.Bold) {
		style.Font = &excelize.Font{
			Family: spec.font.Name,
			Size:   spec.font.Size,
			Bold:   spec.font.Bold,
		}
	}
	if spec.alignment != nil {
		style.Alignment = &excelize.Alignment{
			Horizontal: spec.alignment["horizontal"],
			Vertical:   spec.alignment["vertical"],
		}
	}
	if spec.numFmt != "" {
		fmtCode := spec.numFmt
		style.CustomNumFmt = &fmtCode
	} else if spec.forceText {
		// Builtin format 49 is the text format.
		style.NumFmt = 49
	}

	id, err := w.file.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("create cell style: %w", err)
	}
	w.styleCache[key] = id
	return id, nil
}

func (w *Writer) headerStyle(cfg *docconfig.SheetConfig) (int, error) {
	if cfg.Styling == nil {
		return 0, nil
	}
	return w.style(styleSpec{font: cfg.Styling.HeaderFont, alignment: cfg.Styling.HeaderAlignment})
}

func (w *Writer) dataStyle(cfg *docconfig.SheetConfig) (int, error) {
	if cfg.Styling == nil {
		return 0, nil
	}
	return w.style(styleSpec{font: cfg.Styling.DefaultFont, alignment: cfg.Styling.DefaultAlignment})
}

// textDataStyle is the data style plus the text number format, for columns
// the template forces to text (item numbers with leading zeros and the
// like).
func (w *Writer) textDataStyle(cfg *docconfig.SheetConfig) (int, error) {
	if cfg.Styling == nil {
		return 0, nil
	}
	return w.style(styleSpec{
		font:      cfg.Styling.DefaultFont,
		alignment: cfg.Styling.DefaultAlignment,
		forceText: true,
	})
}

// footerStyle follows the header font, matching how the merger overlays
// footer fonts.
func (w *Writer) footerStyle(cfg *docconfig.SheetConfig) (int, error) {
	if cfg.Styling == nil {
		return 0, nil
	}
	return w.style(styleSpec{font: cfg.Styling.HeaderFont})
}

func (w *Writer) numberFormatStyle(cfg *docconfig.SheetConfig, format string) (int, error) {
	spec := styleSpec{numFmt: format}
	if cfg.Styling != nil {
		spec.font = cfg.Styling.HeaderFont
	}
	return w.style(spec)
}
