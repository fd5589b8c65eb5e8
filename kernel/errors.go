package kernel

import "errors"

// ErrSignatureMismatch is returned by CheckSignature when a residual's
// current canonical signature no longer matches the kernel it was
// previously bound to — the lazy-compilation path's trigger to recompile
// just that entry (spec's eager/lazy split, component D).
var ErrSignatureMismatch = errors.New("kernel: cached kernel signature no longer matches residual structure")
