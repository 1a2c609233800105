package vec

// AABB - ось-ориентированный ограничивающий параллелепипед.
// Contains включает границы; Intersects требует пересечения по объёму, касание гранью не считается.
type AABB struct {
	Min Vec3Float
	Max Vec3Float
}

// NewAABB создает AABB, упорядочивая углы
func NewAABB(a, b Vec3Float) AABB {
	box := AABB{Min: a, Max: b}
	if box.Min.X > box.Max.X {
		box.Min.X, box.Max.X = box.Max.X, box.Min.X
	}
	if box.Min.Y > box.Max.Y {
		box.Min.Y, box.Max.Y = box.Max.Y, box.Min.Y
	}
	if box.Min.Z > box.Max.Z {
		box.Min.Z, box.Max.Z = box.Max.Z, box.Min.Z
	}
	return box
}

// BlockBox возвращает единичный куб блока в указанной позиции
func BlockBox(pos Vec3) AABB {
	min := pos.ToFloat()
	return AABB{Min: min, Max: min.Add(Vec3Float{X: 1, Y: 1, Z: 1})}
}

// CenteredBox возвращает бокс с центром в нижней точке center (как хитбокс сущности).
func CenteredBox(center Vec3Float, width, height float64) AABB {
	half := width / 2
	return AABB{
		Min: Vec3Float{X: center.X - half, Y: center.Y, Z: center.Z - half},
		Max: Vec3Float{X: center.X + half, Y: center.Y + height, Z: center.Z + half},
	}
}

// Contains проверяет, лежит ли точка внутри бокса
func (b AABB) Contains(p Vec3Float) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Intersects проверяет пересечение двух боксов. Боксы, которые только касаются гранью, не пересекаются.
func (b AABB) Intersects(other AABB) bool {
	return b.Min.X < other.Max.X && b.Max.X > other.Min.X &&
		b.Min.Y < other.Max.Y && b.Max.Y > other.Min.Y &&
		b.Min.Z < other.Max.Z && b.Max.Z > other.Min.Z
}

// Expand расширяет бокс на d во все стороны
func (b AABB) Expand(d float64) AABB {
	return AABB{
		Min: Vec3Float{X: b.Min.X - d, Y: b.Min.Y - d, Z: b.Min.Z - d},
		Max: Vec3Float{X: b.Max.X + d, Y: b.Max.Y + d, Z: b.Max.Z + d},
	}
}
