package binary

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/robloxfile/rbxdom"
)

// The functions in this file implement the columnar value encoding of
// §4.2.2: each property of a TypeInfo is stored as one payload holding all N
// instances' values for that property, laid out so that like bytes across
// instances sit next to each other.

func int32ColumnBytes(vals []int32) []byte {
	b := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.BigEndian.PutUint32(b[i*4:i*4+4], zigzagEncode(v))
	}
	interleave(b, 4)
	return b
}

func int32ColumnFromBytes(b []byte, n int) ([]int32, error) {
	if len(b) != n*4 {
		return nil, fmt.Errorf("binary: int32 column: expected %d bytes, got %d", n*4, len(b))
	}
	bc := append([]byte(nil), b...)
	if err := deinterleave(bc, 4); err != nil {
		return nil, err
	}
	out := make([]int32, n)
	for i := range out {
		out[i] = zigzagDecode(binary.BigEndian.Uint32(bc[i*4 : i*4+4]))
	}
	return out, nil
}

func int64ColumnBytes(vals []int64) []byte {
	b := make([]byte, len(vals)*8)
	for i, v := range vals {
		binary.BigEndian.PutUint64(b[i*8:i*8+8], zigzagEncode64(v))
	}
	interleave(b, 8)
	return b
}

func int64ColumnFromBytes(b []byte, n int) ([]int64, error) {
	if len(b) != n*8 {
		return nil, fmt.Errorf("binary: int64 column: expected %d bytes, got %d", n*8, len(b))
	}
	bc := append([]byte(nil), b...)
	if err := deinterleave(bc, 8); err != nil {
		return nil, err
	}
	out := make([]int64, n)
	for i := range out {
		out[i] = zigzagDecode64(binary.BigEndian.Uint64(bc[i*8 : i*8+8]))
	}
	return out, nil
}

func float32ColumnBytes(vals []float32) []byte {
	b := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.BigEndian.PutUint32(b[i*4:i*4+4], rotateFloatEncode(v))
	}
	interleave(b, 4)
	return b
}

func float32ColumnFromBytes(b []byte, n int) ([]float32, error) {
	if len(b) != n*4 {
		return nil, fmt.Errorf("binary: float32 column: expected %d bytes, got %d", n*4, len(b))
	}
	bc := append([]byte(nil), b...)
	if err := deinterleave(bc, 4); err != nil {
		return nil, err
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = rotateFloatDecode(binary.BigEndian.Uint32(bc[i*4 : i*4+4]))
	}
	return out, nil
}

func float64ColumnBytes(vals []float64) []byte {
	b := make([]byte, len(vals)*8)
	for i, v := range vals {
		binary.LittleEndian.PutUint64(b[i*8:i*8+8], math.Float64bits(v))
	}
	return b
}

func float64ColumnFromBytes(b []byte, n int) ([]float64, error) {
	if len(b) != n*8 {
		return nil, fmt.Errorf("binary: float64 column: expected %d bytes, got %d", n*8, len(b))
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8 : i*8+8]))
	}
	return out, nil
}

// encodeColumn renders n values of tag's type into the columnar payload
// bytes described in §4.2.2. NumberSequence and ColorSequence carry a
// variable number of keypoints per instance, so their layout is a column of
// N keypoint counts followed by one interleaved float32 column per keypoint
// field, each sized to the total keypoint count across all N instances.
func encodeColumn(tag typeTag, values []rbxfile.Value) ([]byte, error) {
	n := len(values)
	switch tag {
	case tagString:
		var b []byte
		for _, v := range values {
			s := valueBytes(v)
			hdr := make([]byte, 4)
			binary.LittleEndian.PutUint32(hdr, uint32(len(s)))
			b = append(b, hdr...)
			b = append(b, s...)
		}
		return b, nil

	case tagBool:
		b := make([]byte, n)
		for i, v := range values {
			if bv, ok := v.(rbxfile.ValueBool); ok && bv {
				b[i] = 1
			}
		}
		return b, nil

	case tagInt32:
		vals := make([]int32, n)
		for i, v := range values {
			vals[i] = int32(v.(rbxfile.ValueInt32))
		}
		return int32ColumnBytes(vals), nil

	case tagInt64:
		vals := make([]int64, n)
		for i, v := range values {
			vals[i] = int64(v.(rbxfile.ValueInt64))
		}
		return int64ColumnBytes(vals), nil

	case tagFloat32:
		vals := make([]float32, n)
		for i, v := range values {
			vals[i] = float32(v.(rbxfile.ValueFloat32))
		}
		return float32ColumnBytes(vals), nil

	case tagFloat64:
		vals := make([]float64, n)
		for i, v := range values {
			vals[i] = float64(v.(rbxfile.ValueFloat64))
		}
		return float64ColumnBytes(vals), nil

	case tagEnum:
		vals := make([]int32, n)
		for i, v := range values {
			vals[i] = int32(v.(rbxfile.ValueEnum))
		}
		b := make([]byte, n*4)
		for i, v := range vals {
			binary.BigEndian.PutUint32(b[i*4:i*4+4], uint32(v))
		}
		interleave(b, 4)
		return b, nil

	case tagFaces:
		b := make([]byte, n)
		for i, v := range values {
			b[i] = byte(v.(rbxfile.ValueFaces))
		}
		return b, nil

	case tagAxes:
		b := make([]byte, n)
		for i, v := range values {
			b[i] = byte(v.(rbxfile.ValueAxes))
		}
		return b, nil

	case tagColor3:
		r := make([]float32, n)
		g := make([]float32, n)
		bl := make([]float32, n)
		for i, v := range values {
			c := v.(rbxfile.ValueColor3)
			r[i], g[i], bl[i] = c.R, c.G, c.B
		}
		var out []byte
		out = append(out, float32ColumnBytes(r)...)
		out = append(out, float32ColumnBytes(g)...)
		out = append(out, float32ColumnBytes(bl)...)
		return out, nil

	case tagColor3uint8:
		b := make([]byte, n*3)
		for i, v := range values {
			c := v.(rbxfile.ValueColor3uint8)
			b[i] = c.R
			b[n+i] = c.G
			b[2*n+i] = c.B
		}
		return b, nil

	case tagVector2:
		x := make([]float32, n)
		y := make([]float32, n)
		for i, v := range values {
			p := v.(rbxfile.ValueVector2)
			x[i], y[i] = p.X, p.Y
		}
		var out []byte
		out = append(out, float32ColumnBytes(x)...)
		out = append(out, float32ColumnBytes(y)...)
		return out, nil

	case tagVector3:
		x := make([]float32, n)
		y := make([]float32, n)
		z := make([]float32, n)
		for i, v := range values {
			p := v.(rbxfile.ValueVector3)
			x[i], y[i], z[i] = p.X, p.Y, p.Z
		}
		var out []byte
		out = append(out, float32ColumnBytes(x)...)
		out = append(out, float32ColumnBytes(y)...)
		out = append(out, float32ColumnBytes(z)...)
		return out, nil

	case tagVector2int:
		b := make([]byte, n*4)
		for i, v := range values {
			p := v.(rbxfile.ValueVector2int16)
			binary.LittleEndian.PutUint16(b[i*4:i*4+2], uint16(p.X))
			binary.LittleEndian.PutUint16(b[i*4+2:i*4+4], uint16(p.Y))
		}
		return b, nil

	case tagVector3int:
		b := make([]byte, n*6)
		for i, v := range values {
			p := v.(rbxfile.ValueVector3int16)
			binary.LittleEndian.PutUint16(b[i*6:i*6+2], uint16(p.X))
			binary.LittleEndian.PutUint16(b[i*6+2:i*6+4], uint16(p.Y))
			binary.LittleEndian.PutUint16(b[i*6+4:i*6+6], uint16(p.Z))
		}
		return b, nil

	case tagUDim:
		scale := make([]float32, n)
		offset := make([]int32, n)
		for i, v := range values {
			u := v.(rbxfile.ValueUDim)
			scale[i], offset[i] = u.Scale, u.Offset
		}
		var out []byte
		out = append(out, float32ColumnBytes(scale)...)
		out = append(out, int32ColumnBytes(offset)...)
		return out, nil

	case tagUDim2:
		sx := make([]float32, n)
		sy := make([]float32, n)
		ox := make([]int32, n)
		oy := make([]int32, n)
		for i, v := range values {
			u := v.(rbxfile.ValueUDim2)
			sx[i], sy[i] = u.X.Scale, u.Y.Scale
			ox[i], oy[i] = u.X.Offset, u.Y.Offset
		}
		var out []byte
		out = append(out, float32ColumnBytes(sx)...)
		out = append(out, float32ColumnBytes(sy)...)
		out = append(out, int32ColumnBytes(ox)...)
		out = append(out, int32ColumnBytes(oy)...)
		return out, nil

	case tagRect:
		minX := make([]float32, n)
		minY := make([]float32, n)
		maxX := make([]float32, n)
		maxY := make([]float32, n)
		for i, v := range values {
			r := v.(rbxfile.ValueRect)
			minX[i], minY[i] = r.Min.X, r.Min.Y
			maxX[i], maxY[i] = r.Max.X, r.Max.Y
		}
		var out []byte
		out = append(out, float32ColumnBytes(minX)...)
		out = append(out, float32ColumnBytes(minY)...)
		out = append(out, float32ColumnBytes(maxX)...)
		out = append(out, float32ColumnBytes(maxY)...)
		return out, nil

	case tagNumRange:
		lo := make([]float32, n)
		hi := make([]float32, n)
		for i, v := range values {
			r := v.(rbxfile.ValueNumberRange)
			lo[i], hi[i] = r.Min, r.Max
		}
		var out []byte
		out = append(out, float32ColumnBytes(lo)...)
		out = append(out, float32ColumnBytes(hi)...)
		return out, nil

	case tagCFrame:
		var codes []byte
		var fullMatrices []byte
		px := make([]float32, n)
		py := make([]float32, n)
		pz := make([]float32, n)
		for i, v := range values {
			c := v.(rbxfile.ValueCFrame)
			// The encoder always emits the full-matrix form (code 0x00);
			// the decoder accepts any of the 24 canonical codes, since they
			// may appear in files from other writers.
			codes = append(codes, 0x00)
			m := make([]byte, 36)
			for j, f := range c.Rotation {
				binary.LittleEndian.PutUint32(m[j*4:j*4+4], math.Float32bits(f))
			}
			fullMatrices = append(fullMatrices, m...)
			px[i], py[i], pz[i] = c.Position.X, c.Position.Y, c.Position.Z
		}
		var out []byte
		out = append(out, codes...)
		out = append(out, fullMatrices...)
		out = append(out, float32ColumnBytes(px)...)
		out = append(out, float32ColumnBytes(py)...)
		out = append(out, float32ColumnBytes(pz)...)
		return out, nil

	case tagRef:
		refs := make([]int32, n)
		for i, v := range values {
			refs[i] = v.(refColumnValue).referent
		}
		deltas := deltaEncodeRefs(refs)
		return int32ColumnBytes(deltas), nil

	case tagNumSeq:
		counts := make([]int32, n)
		var times, keyvals, envs []float32
		for i, v := range values {
			ks := v.(rbxfile.ValueNumberSequence)
			counts[i] = int32(len(ks))
			for _, k := range ks {
				times = append(times, k.Time)
				keyvals = append(keyvals, k.Value)
				envs = append(envs, k.Envelope)
			}
		}
		var out []byte
		out = append(out, int32ColumnBytes(counts)...)
		out = append(out, float32ColumnBytes(times)...)
		out = append(out, float32ColumnBytes(keyvals)...)
		out = append(out, float32ColumnBytes(envs)...)
		return out, nil

	case tagColorSeq:
		counts := make([]int32, n)
		var times, r, g, b, envs []float32
		for i, v := range values {
			ks := v.(rbxfile.ValueColorSequence)
			counts[i] = int32(len(ks))
			for _, k := range ks {
				times = append(times, k.Time)
				r = append(r, k.Value.R)
				g = append(g, k.Value.G)
				b = append(b, k.Value.B)
				envs = append(envs, k.Envelope)
			}
		}
		var out []byte
		out = append(out, int32ColumnBytes(counts)...)
		out = append(out, float32ColumnBytes(times)...)
		out = append(out, float32ColumnBytes(r)...)
		out = append(out, float32ColumnBytes(g)...)
		out = append(out, float32ColumnBytes(b)...)
		out = append(out, float32ColumnBytes(envs)...)
		return out, nil

	case tagPhysProps:
		var out []byte
		for _, v := range values {
			p := v.(rbxfile.ValuePhysicalProperties)
			if !p.Custom {
				out = append(out, 0)
				continue
			}
			rec := make([]byte, 21)
			rec[0] = 1
			binary.LittleEndian.PutUint32(rec[1:5], math.Float32bits(p.Density))
			binary.LittleEndian.PutUint32(rec[5:9], math.Float32bits(p.Friction))
			binary.LittleEndian.PutUint32(rec[9:13], math.Float32bits(p.Elasticity))
			binary.LittleEndian.PutUint32(rec[13:17], math.Float32bits(p.FrictionWeight))
			binary.LittleEndian.PutUint32(rec[17:21], math.Float32bits(p.ElasticityWeight))
			out = append(out, rec...)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("binary: unsupported column tag %#x", tag)
	}
}

// valueBytes extracts the raw byte payload of string-shaped value types.
func valueBytes(v rbxfile.Value) []byte {
	switch t := v.(type) {
	case rbxfile.ValueString:
		return []byte(t)
	case rbxfile.ValueContent:
		return []byte(t)
	case rbxfile.ValueBinaryString:
		return []byte(t)
	default:
		return nil
	}
}

// refColumnValue is how the encoder represents a Ref property internally
// while encoding a column: by this point in the pipeline the Ref has
// already been remapped to its referent integer by the caller.
type refColumnValue struct {
	referent int32
}
