package avatar

// Drag is one press-move-release pointer gesture over the avatar preview.
type Drag struct {
	img         Image
	sensitivity float64
	active      bool
}

// BeginDrag presses the pointer. Dragging needs a loaded image.
func BeginDrag(a Avatar, sensitivity float64) (*Drag, error) {
	img, ok := a.(Image)
	if !ok {
		return nil, ErrNoImage
	}
	if sensitivity <= 0 {
		sensitivity = DefaultSensitivity
	}
	return &Drag{img: img, sensitivity: sensitivity, active: true}, nil
}

// Move applies one pointer-move event of (dx, dy) pixels. Moves after End are ignored.
func (d *Drag) Move(dx, dy float64) Transform {
	if d.active {
		t := d.img.Transform
		d.img.Transform = t.SetOffset(t.X+dx*d.sensitivity, t.Y+dy*d.sensitivity)
	}
	return d.img.Transform
}

// End releases the pointer and returns the avatar with the accumulated framing.
func (d *Drag) End() Avatar {
	d.active = false
	return d.img
}
