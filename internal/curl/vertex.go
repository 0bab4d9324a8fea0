package curl

// vertex carries position, texture coordinate, shadow penumbra direction
// and a color attenuation factor through the curl pipeline. Vertices are
// value types held in pre-sized arrays; the curl path never allocates.
type vertex struct {
	posX, posY, posZ     float64
	texX, texY           float64
	penumbraX, penumbraY float64
	colorFactor          float64
}

func (v *vertex) translate(dx, dy float64) {
	v.posX += dx
	v.posY += dy
}

// rotate maps the vertex into a frame where the direction (cos, sin)
// lies along the positive X axis. Penumbra rotates with position.
func (v *vertex) rotate(cos, sin float64) {
	x := v.posX*cos + v.posY*sin
	y := -v.posX*sin + v.posY*cos
	v.posX, v.posY = x, y
	px := v.penumbraX*cos + v.penumbraY*sin
	py := -v.penumbraX*sin + v.penumbraY*cos
	v.penumbraX, v.penumbraY = px, py
}

// rotateBack undoes rotate for the same (cos, sin).
func (v *vertex) rotateBack(cos, sin float64) {
	x := v.posX*cos - v.posY*sin
	y := v.posX*sin + v.posY*cos
	v.posX, v.posY = x, y
	px := v.penumbraX*cos - v.penumbraY*sin
	py := v.penumbraX*sin + v.penumbraY*cos
	v.penumbraX, v.penumbraY = px, py
}

// shadowVertex is one seed for a shadow strip pair: a base point on the
// curled surface plus the penumbra offset and gradient position.
type shadowVertex struct {
	posX, posY, posZ     float64
	penumbraX, penumbraY float64
	// t positions the base vertex color between the outer and inner
	// shadow gradient endpoints.
	t float64
}
