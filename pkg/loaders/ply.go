package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/material"
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format   string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version  string // Usually "1.0"
	Elements []PLYElement
}

// PLYElement is one element block ("vertex", "face", or anything else) in file order
type PLYElement struct {
	Name       string
	Count      int
	Properties []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// Element returns the named element, if the header declares it
func (h *PLYHeader) Element(name string) (PLYElement, bool) {
	for _, e := range h.Elements {
		if e.Name == name {
			return e, true
		}
	}
	return PLYElement{}, false
}

// has reports whether the element declares a scalar property with any of the names
func (e PLYElement) has(names ...string) bool {
	for _, p := range e.Properties {
		for _, n := range names {
			if !p.IsList && p.Name == n {
				return true
			}
		}
	}
	return false
}

// PLYData contains the mesh data loaded from a PLY file
type PLYData struct {
	Vertices  []core.Vec3  // Vertex positions (x, y, z)
	Faces     []int        // Triangle indices (3 per triangle), polygons fan-triangulated
	Normals   []core.Vec3  // Per-vertex normals (nx, ny, nz) - empty if not present
	Colors    []core.Color // Per-vertex colors - empty if not present
	TexCoords []core.Vec2  // Per-vertex texture coordinates (u, v) - empty if not present
}

// LoadPLY loads a PLY file in any of the three standard encodings
func LoadPLY(filename string, logger core.Logger) (*PLYData, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}
	startTime := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	data, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	logger.Printf("Loaded PLY %s: %d vertices, %d triangles in %v\n",
		filename, len(data.Vertices), len(data.Faces)/3, time.Since(startTime))
	return data, nil
}

// ReadPLY parses a PLY stream
func ReadPLY(r io.Reader) (*PLYData, error) {
	reader := bufio.NewReaderSize(r, 1<<20)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var values valueReader
	switch header.Format {
	case "binary_little_endian":
		values = &binaryValues{r: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryValues{r: reader, order: binary.BigEndian}
	case "ascii":
		scanner := bufio.NewScanner(reader)
		scanner.Split(bufio.ScanWords)
		values = &asciiValues{scanner: scanner}
	default:
		return nil, fmt.Errorf("unsupported PLY format: %q", header.Format)
	}

	data := &PLYData{}
	for _, element := range header.Elements {
		switch element.Name {
		case "vertex":
			err = readVertices(values, element, data)
		case "face":
			err = readFaces(values, element, data)
		default:
			err = skipElement(values, element)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s data: %w", element.Name, err)
		}
	}
	return data, nil
}

// Surface converts the loaded mesh into a traceable surface. Normals and
// texture coordinates from the file are used when present.
func (d *PLYData) Surface(mat *material.Material, options *geometry.SurfaceOptions) (*geometry.Surface, error) {
	opts := geometry.SurfaceOptions{Name: "ply"}
	if options != nil {
		opts = *options
	}
	if len(d.Normals) == len(d.Vertices) {
		opts.Normals = d.Normals
	}
	if len(d.TexCoords) == len(d.Vertices) {
		opts.UVs = d.TexCoords
	}
	return geometry.NewSurface(d.Vertices, d.Faces, mat, &opts)
}

// parsePLYHeader reads up to and including end_header, leaving reader at the body
func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}

	magic, err := reader.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, fmt.Errorf("missing ply magic number")
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("header ended before end_header: %w", err)
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			if header.Format == "" {
				return nil, fmt.Errorf("header has no format line")
			}
			return header, nil
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid format line: %q", strings.TrimSpace(line))
			}
			header.Format = parts[1]
			header.Version = parts[2]
		case "comment", "obj_info":
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element line: %q", strings.TrimSpace(line))
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}
			header.Elements = append(header.Elements, PLYElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, fmt.Errorf("property declared before any element")
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("failed to parse property: %w", err)
			}
			current := &header.Elements[len(header.Elements)-1]
			current.Properties = append(current.Properties, prop)
		default:
			return nil, fmt.Errorf("unknown header keyword %q", parts[0])
		}
	}
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, fmt.Errorf("invalid property definition")
	}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, fmt.Errorf("invalid list property definition")
		}
		prop := PLYProperty{IsList: true, ListType: parts[1], DataType: parts[2], Name: parts[3]}
		if getTypeSize(prop.ListType) == 0 || getTypeSize(prop.DataType) == 0 {
			return PLYProperty{}, fmt.Errorf("unsupported list types %s %s", prop.ListType, prop.DataType)
		}
		return prop, nil
	}

	prop := PLYProperty{Type: parts[0], Name: parts[1]}
	if getTypeSize(prop.Type) == 0 {
		return PLYProperty{}, fmt.Errorf("unsupported data type: %s", prop.Type)
	}
	return prop, nil
}

// getTypeSize returns the size in bytes of a PLY data type, or 0 if unknown
func getTypeSize(dataType string) int {
	switch dataType {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	default:
		return 0
	}
}

// readVertices reads positions plus any normals, colors and texture coordinates
func readVertices(values valueReader, element PLYElement, data *PLYData) error {
	hasNormals := element.has("nx")
	hasColors := element.has("red", "r")
	hasTexCoords := element.has("u", "s", "texture_u")

	data.Vertices = make([]core.Vec3, 0, element.Count)
	if hasNormals {
		data.Normals = make([]core.Vec3, 0, element.Count)
	}
	if hasColors {
		data.Colors = make([]core.Color, 0, element.Count)
	}
	if hasTexCoords {
		data.TexCoords = make([]core.Vec2, 0, element.Count)
	}

	for i := 0; i < element.Count; i++ {
		var position, normal core.Vec3
		var uv core.Vec2
		color := core.White

		for _, prop := range element.Properties {
			if prop.IsList {
				if err := skipList(values, prop); err != nil {
					return fmt.Errorf("vertex %d: %w", i, err)
				}
				continue
			}
			value, err := values.scalar(prop.Type)
			if err != nil {
				return fmt.Errorf("vertex %d property %s: %w", i, prop.Name, err)
			}

			switch prop.Name {
			case "x":
				position.X = value
			case "y":
				position.Y = value
			case "z":
				position.Z = value
			case "nx":
				normal.X = value
			case "ny":
				normal.Y = value
			case "nz":
				normal.Z = value
			case "u", "s", "texture_u":
				uv.X = value
			case "v", "t", "texture_v":
				uv.Y = value
			case "red", "r":
				color.R = colorChannel(value, prop.Type)
			case "green", "g":
				color.G = colorChannel(value, prop.Type)
			case "blue", "b":
				color.B = colorChannel(value, prop.Type)
			}
		}

		data.Vertices = append(data.Vertices, position)
		if hasNormals {
			data.Normals = append(data.Normals, normal)
		}
		if hasColors {
			data.Colors = append(data.Colors, color)
		}
		if hasTexCoords {
			data.TexCoords = append(data.TexCoords, uv)
		}
	}
	return nil
}

// colorChannel maps 8-bit channels from [0,255] to [0,1]; float channels pass through
func colorChannel(value float64, dataType string) float64 {
	if dataType == "uchar" || dataType == "uint8" {
		return value / 255.0
	}
	return value
}

// readFaces reads vertex index lists, fan-triangulating polygons
func readFaces(values valueReader, element PLYElement, data *PLYData) error {
	data.Faces = make([]int, 0, element.Count*3)
	polygon := make([]int, 0, 4)

	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Properties {
			if !prop.IsList || (prop.Name != "vertex_indices" && prop.Name != "vertex_index") {
				if err := skipProperty(values, prop); err != nil {
					return fmt.Errorf("face %d property %s: %w", i, prop.Name, err)
				}
				continue
			}

			count, err := values.scalar(prop.ListType)
			if err != nil {
				return fmt.Errorf("face %d vertex count: %w", i, err)
			}
			if count < 3 {
				return fmt.Errorf("face %d has %d vertices, need at least 3", i, int(count))
			}

			polygon = polygon[:0]
			for j := 0; j < int(count); j++ {
				index, err := values.scalar(prop.DataType)
				if err != nil {
					return fmt.Errorf("face %d index %d: %w", i, j, err)
				}
				polygon = append(polygon, int(index))
			}
			for j := 1; j+1 < len(polygon); j++ {
				data.Faces = append(data.Faces, polygon[0], polygon[j], polygon[j+1])
			}
		}
	}
	return nil
}

func skipElement(values valueReader, element PLYElement) error {
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Properties {
			if err := skipProperty(values, prop); err != nil {
				return err
			}
		}
	}
	return nil
}

func skipProperty(values valueReader, prop PLYProperty) error {
	if prop.IsList {
		return skipList(values, prop)
	}
	_, err := values.scalar(prop.Type)
	return err
}

func skipList(values valueReader, prop PLYProperty) error {
	count, err := values.scalar(prop.ListType)
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		if _, err := values.scalar(prop.DataType); err != nil {
			return err
		}
	}
	return nil
}

// valueReader decodes one scalar of a PLY data type from the body
type valueReader interface {
	scalar(dataType string) (float64, error)
}

// binaryValues reads fixed-size values in the file's byte order
type binaryValues struct {
	r     *bufio.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryValues) scalar(dataType string) (float64, error) {
	size := getTypeSize(dataType)
	if size == 0 {
		return 0, fmt.Errorf("unsupported data type: %s", dataType)
	}
	raw := b.buf[:size]
	if _, err := io.ReadFull(b.r, raw); err != nil {
		return 0, err
	}

	switch dataType {
	case "char", "int8":
		return float64(int8(raw[0])), nil
	case "uchar", "uint8":
		return float64(raw[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(raw))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(raw)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(raw))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(raw)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(raw))), nil
	default:
		return math.Float64frombits(b.order.Uint64(raw)), nil
	}
}

// asciiValues reads whitespace-separated tokens
type asciiValues struct {
	scanner *bufio.Scanner
}

func (a *asciiValues) scalar(dataType string) (float64, error) {
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	value, err := strconv.ParseFloat(a.scanner.Text(), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", dataType, a.scanner.Text())
	}
	return value, nil
}
