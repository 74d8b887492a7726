package rleduce

// Options select the passes run over each container.
type Options struct {
	// Trim removes fully blank lines from the top and bottom of every
	// rlëD frame where all frames allow it.
	Trim bool
	// Picts rewrites PICT resources in a normalized encoding.
	Picts bool
	// Reduce lowers PICT colour depth to 16-bit. It takes effect only
	// with Picts; the command-line front end sets Picts whenever Reduce
	// is given.
	Reduce bool
	// Encode builds new rlëDs from the PICT pairs indexed by spïn and
	// shän resources.
	Encode bool
	// Dither applies error diffusion when reducing colour depth, for
	// both Reduce and Encode.
	Dither bool
	// Verbose prints a per-resource statistics table for each pass.
	Verbose bool
}
