package datetime

// catalog is the full recognition order: datetime layouts, then dates, then times.
var catalog = func() []*Format {
	all := make([]*Format, 0, len(datetimeFormats)+len(dateFormats)+len(timeFormats))
	all = append(all, datetimeFormats...)
	all = append(all, dateFormats...)
	all = append(all, timeFormats...)
	return all
}()

// candidate is a (format, shape) pair indexed by token length.
type candidate struct {
	format *Format
	shape  *shape
}

// byLength lists the candidates for each token length in catalog order, so
// recognition only visits shapes that can possibly fit.
var byLength = func() map[int][]candidate {
	idx := make(map[int][]candidate)
	for _, f := range catalog {
		for i := range f.shapes {
			sh := &f.shapes[i]
			n := len(sh.template)
			idx[n] = append(idx[n], candidate{format: f, shape: sh})
		}
	}
	return idx
}()

// Recognize tries every catalog layout against token and returns the first
// one that matches both structurally and in range. A token matching nothing
// is not an error: the caller treats it as a plain string.
func Recognize(token string) (Result, bool) {
	for _, c := range byLength[len(token)] {
		v, ok := c.shape.match(token)
		if !ok || !valid(v, c.format.Kind) {
			continue
		}
		return Result{Value: v, Kind: c.format.Kind, Format: c.format.Name}, true
	}
	return Result{}, false
}

// Formats returns the catalog in recognition order.
func Formats() []*Format {
	out := make([]*Format, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry with the given name.
func Lookup(name string) (*Format, bool) {
	for _, f := range catalog {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}
