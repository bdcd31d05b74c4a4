package cmd

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

type pdfInfo struct {
	pages int
	// textOps counts the text-showing operators on each page.
	textOps []int
}

// inspectPDF reads back a written report and checks that every page carries a
// decodable content stream.
func inspectPDF(path string) (pdfInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return pdfInfo{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	ctx, err := pdfcpu.Read(f, model.NewDefaultConfiguration())
	if err != nil {
		return pdfInfo{}, fmt.Errorf("read pdf: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return pdfInfo{}, fmt.Errorf("page count: %w", err)
	}

	info := pdfInfo{pages: ctx.PageCount}
	for i := 1; i <= ctx.PageCount; i++ {
		pageDict, _, _, err := ctx.PageDict(i, false)
		if err != nil {
			return pdfInfo{}, fmt.Errorf("page %d dict: %w", i, err)
		}
		obj, found := pageDict.Find("Contents")
		if !found {
			return pdfInfo{}, fmt.Errorf("page %d has no content", i)
		}
		data, err := pageContent(ctx, obj)
		if err != nil {
			return pdfInfo{}, fmt.Errorf("page %d content stream: %w", i, err)
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return pdfInfo{}, fmt.Errorf("page %d is blank", i)
		}
		info.textOps = append(info.textOps, countTextOps(data))
	}
	return info, nil
}

// pageContent dereferences and decodes a Contents entry, concatenating the
// parts when it is an array of streams.
func pageContent(ctx *model.Context, obj types.Object) ([]byte, error) {
	obj, err := ctx.Dereference(obj)
	if err != nil {
		return nil, err
	}

	switch v := obj.(type) {
	case types.StreamDict:
		if err := v.Decode(); err != nil {
			return nil, fmt.Errorf("decode stream: %w", err)
		}
		return v.Content, nil

	case types.Array:
		var buf bytes.Buffer
		for _, item := range v {
			data, err := pageContent(ctx, item)
			if err != nil {
				return nil, err
			}
			buf.Write(data)
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("unexpected Contents type: %T", obj)
	}
}

var textShowOp = regexp.MustCompile(`[)>\]]\s*T[jJ]\b`)

// countTextOps counts Tj and TJ operators in a decoded content stream. The
// operator may follow its string operand without whitespace, as in "(A)Tj".
func countTextOps(content []byte) int {
	return len(textShowOp.FindAllIndex(content, -1))
}
