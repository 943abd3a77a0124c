package binary

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/robloxfile/rbxdom"
)

// decodeColumn is the inverse of encodeColumn for every tag except tagRef,
// whose referents must first be resolved against the decoder's
// referentToRef map by the caller (see decoder.go).
func decodeColumn(tag typeTag, vt rbxfile.VariantType, raw []byte, n int) ([]rbxfile.Value, error) {
	switch tag {
	case tagString:
		out := make([]rbxfile.Value, n)
		pos := 0
		for i := 0; i < n; i++ {
			if pos+4 > len(raw) {
				return nil, fmt.Errorf("binary: string column: truncated length prefix")
			}
			length := binary.LittleEndian.Uint32(raw[pos : pos+4])
			pos += 4
			if pos+int(length) > len(raw) {
				return nil, fmt.Errorf("binary: string column: truncated value")
			}
			s := raw[pos : pos+int(length)]
			pos += int(length)
			out[i] = stringValueOf(vt, s)
		}
		return out, nil

	case tagBool:
		if len(raw) != n {
			return nil, fmt.Errorf("binary: bool column: expected %d bytes, got %d", n, len(raw))
		}
		out := make([]rbxfile.Value, n)
		for i := range out {
			out[i] = rbxfile.ValueBool(raw[i] != 0)
		}
		return out, nil

	case tagInt32:
		vals, err := int32ColumnFromBytes(raw, n)
		if err != nil {
			return nil, err
		}
		out := make([]rbxfile.Value, n)
		for i, v := range vals {
			out[i] = rbxfile.ValueInt32(v)
		}
		return out, nil

	case tagInt64:
		vals, err := int64ColumnFromBytes(raw, n)
		if err != nil {
			return nil, err
		}
		out := make([]rbxfile.Value, n)
		for i, v := range vals {
			out[i] = rbxfile.ValueInt64(v)
		}
		return out, nil

	case tagFloat32:
		vals, err := float32ColumnFromBytes(raw, n)
		if err != nil {
			return nil, err
		}
		out := make([]rbxfile.Value, n)
		for i, v := range vals {
			out[i] = rbxfile.ValueFloat32(v)
		}
		return out, nil

	case tagFloat64:
		vals, err := float64ColumnFromBytes(raw, n)
		if err != nil {
			return nil, err
		}
		out := make([]rbxfile.Value, n)
		for i, v := range vals {
			out[i] = rbxfile.ValueFloat64(v)
		}
		return out, nil

	case tagEnum:
		if len(raw) != n*4 {
			return nil, fmt.Errorf("binary: enum column: expected %d bytes, got %d", n*4, len(raw))
		}
		bc := append([]byte(nil), raw...)
		if err := deinterleave(bc, 4); err != nil {
			return nil, err
		}
		out := make([]rbxfile.Value, n)
		for i := range out {
			out[i] = rbxfile.ValueEnum(binary.BigEndian.Uint32(bc[i*4 : i*4+4]))
		}
		return out, nil

	case tagFaces:
		if len(raw) != n {
			return nil, fmt.Errorf("binary: faces column: expected %d bytes, got %d", n, len(raw))
		}
		out := make([]rbxfile.Value, n)
		for i := range out {
			out[i] = rbxfile.ValueFaces(raw[i])
		}
		return out, nil

	case tagAxes:
		if len(raw) != n {
			return nil, fmt.Errorf("binary: axes column: expected %d bytes, got %d", n, len(raw))
		}
		out := make([]rbxfile.Value, n)
		for i := range out {
			out[i] = rbxfile.ValueAxes(raw[i])
		}
		return out, nil

	case tagColor3:
		if len(raw) != n*12 {
			return nil, fmt.Errorf("binary: color3 column: expected %d bytes, got %d", n*12, len(raw))
		}
		r, err := float32ColumnFromBytes(raw[0:n*4], n)
		if err != nil {
			return nil, err
		}
		g, err := float32ColumnFromBytes(raw[n*4:n*8], n)
		if err != nil {
			return nil, err
		}
		b, err := float32ColumnFromBytes(raw[n*8:n*12], n)
		if err != nil {
			return nil, err
		}
		out := make([]rbxfile.Value, n)
		for i := range out {
			out[i] = rbxfile.ValueColor3{R: r[i], G: g[i], B: b[i]}
		}
		return out, nil

	case tagColor3uint8:
		if len(raw) != n*3 {
			return nil, fmt.Errorf("binary: color3uint8 column: expected %d bytes, got %d", n*3, len(raw))
		}
		out := make([]rbxfile.Value, n)
		for i := range out {
			out[i] = rbxfile.ValueColor3uint8{R: raw[i], G: raw[n+i], B: raw[2*n+i]}
		}
		return out, nil

	case tagVector2:
		if len(raw) != n*8 {
			return nil, fmt.Errorf("binary: vector2 column: expected %d bytes, got %d", n*8, len(raw))
		}
		x, err := float32ColumnFromBytes(raw[0:n*4], n)
		if err != nil {
			return nil, err
		}
		y, err := float32ColumnFromBytes(raw[n*4:n*8], n)
		if err != nil {
			return nil, err
		}
		out := make([]rbxfile.Value, n)
		for i := range out {
			out[i] = rbxfile.ValueVector2{X: x[i], Y: y[i]}
		}
		return out, nil

	case tagVector3:
		if len(raw) != n*12 {
			return nil, fmt.Errorf("binary: vector3 column: expected %d bytes, got %d", n*12, len(raw))
		}
		x, err := float32ColumnFromBytes(raw[0:n*4], n)
		if err != nil {
			return nil, err
		}
		y, err := float32ColumnFromBytes(raw[n*4:n*8], n)
		if err != nil {
			return nil, err
		}
		z, err := float32ColumnFromBytes(raw[n*8:n*12], n)
		if err != nil {
			return nil, err
		}
		out := make([]rbxfile.Value, n)
		for i := range out {
			out[i] = rbxfile.ValueVector3{X: x[i], Y: y[i], Z: z[i]}
		}
		return out, nil

	case tagVector2int:
		if len(raw) != n*4 {
			return nil, fmt.Errorf("binary: vector2int16 column: expected %d bytes, got %d", n*4, len(raw))
		}
		out := make([]rbxfile.Value, n)
		for i := range out {
			x := int16(binary.LittleEndian.Uint16(raw[i*4 : i*4+2]))
			y := int16(binary.LittleEndian.Uint16(raw[i*4+2 : i*4+4]))
			out[i] = rbxfile.ValueVector2int16{X: x, Y: y}
		}
		return out, nil

	case tagVector3int:
		if len(raw) != n*6 {
			return nil, fmt.Errorf("binary: vector3int16 column: expected %d bytes, got %d", n*6, len(raw))
		}
		out := make([]rbxfile.Value, n)
		for i := range out {
			x := int16(binary.LittleEndian.Uint16(raw[i*6 : i*6+2]))
			y := int16(binary.LittleEndian.Uint16(raw[i*6+2 : i*6+4]))
			z := int16(binary.LittleEndian.Uint16(raw[i*6+4 : i*6+6]))
			out[i] = rbxfile.ValueVector3int16{X: x, Y: y, Z: z}
		}
		return out, nil

	case tagUDim:
		if len(raw) != n*8 {
			return nil, fmt.Errorf("binary: udim column: expected %d bytes, got %d", n*8, len(raw))
		}
		scale, err := float32ColumnFromBytes(raw[0:n*4], n)
		if err != nil {
			return nil, err
		}
		offset, err := int32ColumnFromBytes(raw[n*4:n*8], n)
		if err != nil {
			return nil, err
		}
		out := make([]rbxfile.Value, n)
		for i := range out {
			out[i] = rbxfile.ValueUDim{Scale: scale[i], Offset: offset[i]}
		}
		return out, nil

	case tagUDim2:
		if len(raw) != n*16 {
			return nil, fmt.Errorf("binary: udim2 column: expected %d bytes, got %d", n*16, len(raw))
		}
		sx, err := float32ColumnFromBytes(raw[0:n*4], n)
		if err != nil {
			return nil, err
		}
		sy, err := float32ColumnFromBytes(raw[n*4:n*8], n)
		if err != nil {
			return nil, err
		}
		ox, err := int32ColumnFromBytes(raw[n*8:n*12], n)
		if err != nil {
			return nil, err
		}
		oy, err := int32ColumnFromBytes(raw[n*12:n*16], n)
		if err != nil {
			return nil, err
		}
		out := make([]rbxfile.Value, n)
		for i := range out {
			out[i] = rbxfile.ValueUDim2{
				X: rbxfile.ValueUDim{Scale: sx[i], Offset: ox[i]},
				Y: rbxfile.ValueUDim{Scale: sy[i], Offset: oy[i]},
			}
		}
		return out, nil

	case tagRect:
		if len(raw) != n*16 {
			return nil, fmt.Errorf("binary: rect column: expected %d bytes, got %d", n*16, len(raw))
		}
		minX, err := float32ColumnFromBytes(raw[0:n*4], n)
		if err != nil {
			return nil, err
		}
		minY, err := float32ColumnFromBytes(raw[n*4:n*8], n)
		if err != nil {
			return nil, err
		}
		maxX, err := float32ColumnFromBytes(raw[n*8:n*12], n)
		if err != nil {
			return nil, err
		}
		maxY, err := float32ColumnFromBytes(raw[n*12:n*16], n)
		if err != nil {
			return nil, err
		}
		out := make([]rbxfile.Value, n)
		for i := range out {
			out[i] = rbxfile.ValueRect{
				Min: rbxfile.ValueVector2{X: minX[i], Y: minY[i]},
				Max: rbxfile.ValueVector2{X: maxX[i], Y: maxY[i]},
			}
		}
		return out, nil

	case tagNumRange:
		if len(raw) != n*8 {
			return nil, fmt.Errorf("binary: numberrange column: expected %d bytes, got %d", n*8, len(raw))
		}
		lo, err := float32ColumnFromBytes(raw[0:n*4], n)
		if err != nil {
			return nil, err
		}
		hi, err := float32ColumnFromBytes(raw[n*4:n*8], n)
		if err != nil {
			return nil, err
		}
		out := make([]rbxfile.Value, n)
		for i := range out {
			out[i] = rbxfile.ValueNumberRange{Min: lo[i], Max: hi[i]}
		}
		return out, nil

	case tagCFrame:
		if len(raw) < n {
			return nil, fmt.Errorf("binary: cframe column: truncated orientation codes")
		}
		codes := raw[:n]
		pos := n
		rotations := make([][9]float32, n)
		for i, code := range codes {
			if code == 0x00 {
				if pos+36 > len(raw) {
					return nil, fmt.Errorf("binary: cframe column: truncated full matrix")
				}
				var m [9]float32
				for j := 0; j < 9; j++ {
					m[j] = math.Float32frombits(binary.LittleEndian.Uint32(raw[pos+j*4 : pos+j*4+4]))
				}
				rotations[i] = m
				pos += 36
			} else {
				rotations[i] = matrixForCode(code)
			}
		}
		if len(raw)-pos != n*12 {
			return nil, fmt.Errorf("binary: cframe column: position data size mismatch")
		}
		px, err := float32ColumnFromBytes(raw[pos:pos+n*4], n)
		if err != nil {
			return nil, err
		}
		py, err := float32ColumnFromBytes(raw[pos+n*4:pos+n*8], n)
		if err != nil {
			return nil, err
		}
		pz, err := float32ColumnFromBytes(raw[pos+n*8:pos+n*12], n)
		if err != nil {
			return nil, err
		}
		out := make([]rbxfile.Value, n)
		for i := range out {
			out[i] = rbxfile.ValueCFrame{
				Position: rbxfile.ValueVector3{X: px[i], Y: py[i], Z: pz[i]},
				Rotation: rotations[i],
			}
		}
		return out, nil

	case tagNumSeq:
		if len(raw) < n*4 {
			return nil, fmt.Errorf("binary: numbersequence column: truncated keypoint counts")
		}
		counts, err := int32ColumnFromBytes(raw[:n*4], n)
		if err != nil {
			return nil, err
		}
		total, err := sumKeypointCounts(counts)
		if err != nil {
			return nil, err
		}
		pos := n * 4
		fieldSize := total * 4
		if len(raw)-pos != fieldSize*3 {
			return nil, fmt.Errorf("binary: numbersequence column: keypoint field size mismatch")
		}
		times, err := float32ColumnFromBytes(raw[pos:pos+fieldSize], total)
		if err != nil {
			return nil, err
		}
		keyvals, err := float32ColumnFromBytes(raw[pos+fieldSize:pos+2*fieldSize], total)
		if err != nil {
			return nil, err
		}
		envs, err := float32ColumnFromBytes(raw[pos+2*fieldSize:pos+3*fieldSize], total)
		if err != nil {
			return nil, err
		}
		out := make([]rbxfile.Value, n)
		idx := 0
		for i, c := range counts {
			ks := make(rbxfile.ValueNumberSequence, c)
			for j := range ks {
				ks[j] = rbxfile.NumberSequenceKeypoint{Time: times[idx], Value: keyvals[idx], Envelope: envs[idx]}
				idx++
			}
			out[i] = ks
		}
		return out, nil

	case tagColorSeq:
		if len(raw) < n*4 {
			return nil, fmt.Errorf("binary: colorsequence column: truncated keypoint counts")
		}
		counts, err := int32ColumnFromBytes(raw[:n*4], n)
		if err != nil {
			return nil, err
		}
		total, err := sumKeypointCounts(counts)
		if err != nil {
			return nil, err
		}
		pos := n * 4
		fieldSize := total * 4
		if len(raw)-pos != fieldSize*5 {
			return nil, fmt.Errorf("binary: colorsequence column: keypoint field size mismatch")
		}
		times, err := float32ColumnFromBytes(raw[pos:pos+fieldSize], total)
		if err != nil {
			return nil, err
		}
		r, err := float32ColumnFromBytes(raw[pos+fieldSize:pos+2*fieldSize], total)
		if err != nil {
			return nil, err
		}
		g, err := float32ColumnFromBytes(raw[pos+2*fieldSize:pos+3*fieldSize], total)
		if err != nil {
			return nil, err
		}
		b, err := float32ColumnFromBytes(raw[pos+3*fieldSize:pos+4*fieldSize], total)
		if err != nil {
			return nil, err
		}
		envs, err := float32ColumnFromBytes(raw[pos+4*fieldSize:pos+5*fieldSize], total)
		if err != nil {
			return nil, err
		}
		out := make([]rbxfile.Value, n)
		idx := 0
		for i, c := range counts {
			ks := make(rbxfile.ValueColorSequence, c)
			for j := range ks {
				ks[j] = rbxfile.ColorSequenceKeypoint{
					Time:     times[idx],
					Value:    rbxfile.ValueColor3{R: r[idx], G: g[idx], B: b[idx]},
					Envelope: envs[idx],
				}
				idx++
			}
			out[i] = ks
		}
		return out, nil

	case tagPhysProps:
		out := make([]rbxfile.Value, 0, n)
		pos := 0
		for len(out) < n {
			if pos >= len(raw) {
				return nil, fmt.Errorf("binary: physicalproperties column: truncated")
			}
			custom := raw[pos]
			pos++
			if custom == 0 {
				out = append(out, rbxfile.ValuePhysicalProperties{})
				continue
			}
			if pos+20 > len(raw) {
				return nil, fmt.Errorf("binary: physicalproperties column: truncated record")
			}
			p := rbxfile.ValuePhysicalProperties{
				Custom:            true,
				Density:           math.Float32frombits(binary.LittleEndian.Uint32(raw[pos : pos+4])),
				Friction:          math.Float32frombits(binary.LittleEndian.Uint32(raw[pos+4 : pos+8])),
				Elasticity:        math.Float32frombits(binary.LittleEndian.Uint32(raw[pos+8 : pos+12])),
				FrictionWeight:    math.Float32frombits(binary.LittleEndian.Uint32(raw[pos+12 : pos+16])),
				ElasticityWeight:  math.Float32frombits(binary.LittleEndian.Uint32(raw[pos+16 : pos+20])),
			}
			pos += 20
			out = append(out, p)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("binary: unsupported column tag %#x", tag)
	}
}

// sumKeypointCounts validates and totals a NumberSequence/ColorSequence
// column's per-instance keypoint counts, ahead of slicing the following
// per-field float32 columns.
func sumKeypointCounts(counts []int32) (int, error) {
	total := 0
	for _, c := range counts {
		if c < 0 {
			return 0, fmt.Errorf("binary: sequence column: negative keypoint count %d", c)
		}
		if c < 2 {
			return 0, fmt.Errorf("binary: sequence column: keypoint count %d is below 2", c)
		}
		total += int(c)
	}
	return total, nil
}

func stringValueOf(vt rbxfile.VariantType, b []byte) rbxfile.Value {
	switch vt {
	case rbxfile.TypeContent:
		return rbxfile.ValueContent(string(b))
	case rbxfile.TypeBinaryString:
		out := make([]byte, len(b))
		copy(out, b)
		return rbxfile.ValueBinaryString(out)
	default:
		return rbxfile.ValueString(string(b))
	}
}
