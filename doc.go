/*
Package huginn draws a distribution logo next to a text panel using the
inline image protocol of the current terminal: Kitty graphics, Sixel or
iTerm2 inline images. Terminals without graphics get text only.

The pipeline runs once per invocation:

	detect → rasterize → quantize (Sixel only) → encode → compose

Every stage is a plain function over immutable values, and the detected
Terminal is passed explicitly to each stage that needs it.

Protocol Detection:

	det := huginn.NewDetector("") // "" or "auto" detects; "kitty", "sixel", ... force
	term := det.Terminal(ctx)
	switch term.Protocol {
	case huginn.Kitty, huginn.Sixel, huginn.ITerm2:
	    // graphics available
	case huginn.None:
	    // text only
	}

Detection never fails. When stdout is not a terminal it returns None
without writing a query. The Sixel query (DA1) is bounded by Detector.Timeout.

Rendering:

	logo, err := huginn.OpenLogo("arch.svg")
	if err != nil {
	    log.Fatal(err)
	}
	r := huginn.NewRenderer(term, 20, 10)
	r.Render(os.Stdout, logo, huginn.TextPanel{Lines: lines})

Render degrades every graphics failure (RasterizeError, EncodeError) to a
text only layout and logs a single warning.

Lower level building blocks:

	fp := term.Footprint(20, 10)
	raster, _ := huginn.Rasterize(logo, fp)
	enc, _ := huginn.Encode(huginn.Kitty, raster, fp, huginn.EncodeOptions{})
	huginn.Compose(os.Stdout, enc, panel, huginn.ComposeOptions{})

Tmux Support:

Inside tmux, Terminal.Tmux is set and Encode wraps sequences in tmux
passthrough when EncodeOptions.Passthrough is true. EnableTmuxPassthrough
turns on allow-passthrough for the current pane.
*/
package huginn
