package rleduce

import (
	"path/filepath"
	"strings"

	"github.com/andrews05/rleduce/dither"
	"github.com/andrews05/rleduce/pict"
	"github.com/andrews05/rleduce/rle"
	"github.com/andrews05/rleduce/rsrc"
)

// ProcessFile runs the selected passes over one container. The container
// is rewritten in place when a pass changed it, or copied to outPath when
// one is given; an outPath with a known extension also converts the
// container layout. Returns true when a file was written.
func (o *Optimizer) ProcessFile(path, outPath string) (bool, error) {
	file, err := rsrc.ReadFile(path)
	if err != nil {
		return false, err
	}

	o.logger.Printf("Processing %s...", filepath.Base(path))
	if !o.process(file) && outPath == "" {
		o.logger.Printf("No changes written.")
		return false, nil
	}

	format := file.CurrentFormat()
	if outPath == "" {
		outPath = path
	} else {
		switch strings.ToLower(filepath.Ext(outPath)) {
		case ".rez":
			format = rsrc.FormatRez
		case ".ndat", ".npif", ".rsrc":
			format = rsrc.FormatClassic
		}
	}
	if err := file.Write(outPath, format); err != nil {
		return false, err
	}
	return true, nil
}

// process runs the passes in their fixed order: when both encoding and
// trimming are requested the encode runs first so freshly encoded rlëDs
// are seen (and trimmed) by the rewrite pass; otherwise encoding runs
// after, since untrimmed output needs no second look.
func (o *Optimizer) process(file *rsrc.File) bool {
	changed := false
	if o.opts.Encode && o.opts.Trim {
		changed = o.processSprites(file) || changed
	}
	changed = o.processRles(file) || changed
	if o.opts.Encode && !o.opts.Trim {
		changed = o.processSprites(file) || changed
	}
	if o.opts.Picts {
		changed = o.processPicts(file) || changed
	}
	return changed
}

func (o *Optimizer) processRles(file *rsrc.File) bool {
	t := file.TypeContainer(typeRle)
	if t == nil || t.Count() == 0 {
		return false
	}
	if o.opts.Verbose {
		o.logger.Printf("rlëD ID  Frames  Height      Size  New Height  New Size   Saved  Action")
	}
	saved := 0
	for _, res := range t.Resources() {
		n, err := o.rewriteRle(res)
		if err != nil {
			o.errs.Printf("%s %d: %v", res.TypeCode(), res.ID(), err)
			continue
		}
		saved += n
	}
	o.logger.Printf("Saved %d bytes from %d rlëDs.", saved, t.Count())
	return saved != 0
}

func (o *Optimizer) rewriteRle(res *rsrc.Resource) (int, error) {
	data := res.Data()
	r, err := rle.NewReader(data)
	if err != nil {
		return 0, err
	}
	h := r.Header()

	trim := 0
	if o.opts.Trim {
		if trim, err = rle.Trim(data); err != nil {
			return 0, err
		}
	}
	out, err := rle.Rewrite(data, trim)
	if err != nil {
		return 0, err
	}

	diff := len(data) - len(out)
	if o.opts.Verbose {
		action := "Written"
		if diff <= 0 {
			action = "Not written"
		}
		pc := float64(diff) * 100 / float64(len(data))
		o.logger.Printf("%7d  %6d  %6d  %8d  %10d  %8d  %5.1f%%  %s",
			res.ID(), h.FrameCount, h.Height, len(data), h.Height-trim*2, len(out), pc, action)
	}
	if diff <= 0 {
		return 0, nil
	}
	res.SetData(out)
	return diff, nil
}

func (o *Optimizer) processPicts(file *rsrc.File) bool {
	t := file.TypeContainer(typePict)
	if t == nil || t.Count() == 0 {
		return false
	}
	if o.opts.Verbose {
		o.logger.Printf("PICT ID  Type        Size  New Type  New Size   Saved  Action")
	}
	saved := 0
	changed := false
	for _, res := range t.Resources() {
		n, written, err := o.rewritePict(res)
		if err != nil {
			o.errs.Printf("%s %d: %v", res.TypeCode(), res.ID(), err)
			continue
		}
		saved += n
		changed = changed || written
	}
	o.logger.Printf("Saved %d bytes from %d PICTs.", saved, t.Count())
	return changed
}

func (o *Optimizer) rewritePict(res *rsrc.Resource) (int, bool, error) {
	data := res.Data()
	p, err := pict.Decode(data)
	if err != nil {
		return 0, false, err
	}
	format := p.Format()
	// Low depth images are left undithered; 16-bit sources are already
	// on the target lattice.
	if o.opts.Reduce && o.opts.Dither && format > 4 && format != 16 {
		dither.RGB555(p.ImageSurface())
	}
	out, err := p.Data(o.opts.Reduce || format == 16)
	if err != nil {
		return 0, false, err
	}

	diff := len(data) - len(out)
	// Non-standard containers and depth reductions are written even when
	// the result is no smaller.
	save := diff > 0 || format > 32 || (o.opts.Reduce && format != 16)
	if o.opts.Verbose {
		action := "Not written"
		if save {
			action = "Written"
			if diff <= 0 {
				action = "Written (forced)"
			}
		}
		pc := float64(diff) * 100 / float64(len(data))
		o.logger.Printf("%7d  %-6s  %8d  %-8s  %8d  %5.1f%%  %s",
			res.ID(), pict.FormatName(format), len(data), pict.FormatName(p.Format()), len(out), pc, action)
	}
	if !save {
		return 0, false, nil
	}
	res.SetData(out)
	return diff, true, nil
}
