package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/material"
	"github.com/labstack/echo/v4"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit           bool                   `json:"hit"`
	Surface       string                 `json:"surface,omitempty"`
	MaterialType  string                 `json:"materialType,omitempty"`
	TriangleIndex int                    `json:"triangleIndex"`
	Point         [3]float64             `json:"point"`
	Normal        [3]float64             `json:"normal"`
	Distance      float64                `json:"distance"`
	Color         [3]float64             `json:"color"`
	Properties    map[string]interface{} `json:"properties,omitempty"`
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Color) string {
	r, g, b := c.ToRGB8()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// extractMaterialInfo describes the shading parameters of a material
func extractMaterialInfo(mat *material.Material) map[string]interface{} {
	properties := map[string]interface{}{
		"kd": mat.Kd,
		"ks": mat.Ks,
	}

	switch mat.Type {
	case material.DiffuseGlossy:
		properties["color"] = hexColor(mat.Color)
	case material.Reflective:
		properties["color"] = hexColor(mat.Color)
		properties["refractiveIndex"] = mat.Ior
	case material.ReflectiveRefractive:
		properties["refractiveIndex"] = mat.Ior
		properties["absorption"] = vecArray(mat.Absorption)
	}
	return properties
}

// handleInspect traces the center ray of one pixel and describes what it hits
func (s *Server) handleInspect(c echo.Context) error {
	req := &RenderRequest{}
	if err := s.parseCommonSceneParams(c.QueryParams(), req); err != nil {
		return badRequest(c, "Invalid scene parameters: %v", err)
	}

	pixelX, err := strconv.Atoi(c.QueryParam("x"))
	if err != nil {
		return badRequest(c, "Invalid x coordinate")
	}
	pixelY, err := strconv.Atoi(c.QueryParam("y"))
	if err != nil {
		return badRequest(c, "Invalid y coordinate")
	}

	rt, err := s.newRaytracer(req, nil)
	if err != nil {
		return badRequest(c, "%v", err)
	}

	width, height := rt.Camera().Size()
	if pixelX < 0 || pixelX >= width || pixelY < 0 || pixelY >= height {
		return badRequest(c, "Pixel coordinates out of bounds")
	}

	result, ok := rt.Pick(pixelX, pixelY)
	if !ok {
		return c.JSON(http.StatusOK, InspectResponse{Hit: false})
	}

	return c.JSON(http.StatusOK, InspectResponse{
		Hit:           true,
		Surface:       result.Surface,
		MaterialType:  result.Material.String(),
		TriangleIndex: result.TriangleIndex,
		Point:         vecArray(result.Point),
		Normal:        vecArray(result.Normal),
		Distance:      result.Distance,
		Color:         [3]float64{result.Color.R, result.Color.G, result.Color.B},
		Properties:    extractMaterialInfo(result.Properties),
	})
}
