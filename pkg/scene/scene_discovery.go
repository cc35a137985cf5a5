package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
)

const (
	builtinGroup = "Built-in Scenes"
	meshGroup    = "Mesh Scenes"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "ply"
	FilePath    string `json:"filePath"`    // Path to PLY file (ply type only)
	Variant     string `json:"variant"`     // Variant name (optional)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// builtinScene pairs a registry entry with its constructor
type builtinScene struct {
	info  SceneInfo
	build func(cameraOverrides ...geometry.CameraConfig) (*Scene, error)
}

var builtinScenes = []builtinScene{
	{
		info: SceneInfo{
			ID:          "showcase",
			Name:        "Showcase",
			Description: "Glass sphere, mirror wall and textured floor lit by all four light kinds",
		},
		build: NewShowcaseScene,
	},
	{
		info: SceneInfo{
			ID:          "sphere",
			Name:        "Sphere",
			Description: "Tessellated sphere under an overhead directional light",
		},
		build: NewSphereScene,
	},
	{
		info: SceneInfo{
			ID:          "mirror",
			Name:        "Mirror",
			Description: "A checkered floor seen in a mirror parallel to it",
		},
		build: NewMirrorScene,
	},
	{
		info: SceneInfo{
			ID:          "cornell-box",
			Name:        "Cornell Box",
			Description: "Cornell box with a glass sphere and a mirrored block",
		},
		build: NewCornellScene,
	},
	{
		info: SceneInfo{
			ID:          "textures",
			Name:        "Texture Test",
			Description: "Image and procedural textures on quads, spheres and boxes",
		},
		build: NewTextureTestScene,
	},
}

// BuiltinScenes returns the registry entries of the scenes compiled into the binary
func BuiltinScenes() []SceneInfo {
	scenes := make([]SceneInfo, len(builtinScenes))
	for i, b := range builtinScenes {
		info := b.info
		info.DisplayName = info.Name
		info.Group = builtinGroup
		info.Type = "builtin"
		scenes[i] = info
	}
	return scenes
}

// ListMeshScenes scans directories (default "scenes" then "../scenes") for
// PLY meshes. The first directory that exists is used.
func ListMeshScenes(dirs ...string) ([]SceneInfo, error) {
	if len(dirs) == 0 {
		dirs = []string{"scenes", "../scenes"}
	}
	var scenesDir string
	for _, path := range dirs {
		if _, err := os.Stat(path); err == nil {
			scenesDir = path
			break
		}
	}

	if scenesDir == "" {
		// No scenes directory found, return empty list
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(scenesDir, "*.ply"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := make([]SceneInfo, 0, len(files))
	for _, filePath := range files {
		sceneInfo, err := ParsePLYMetadata(filePath)
		if err != nil {
			// Log warning but continue processing other files
			fmt.Printf("Warning: failed to parse metadata for %s: %v\n", filePath, err)
			continue
		}
		scenes = append(scenes, sceneInfo)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ParsePLYMetadata extracts metadata from "comment Key: value" lines in a PLY
// header. Missing keys fall back to values derived from the filename.
func ParsePLYMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	sceneInfo := SceneInfo{
		ID:          "ply:" + nameWithoutExt,
		Name:        titleCase(nameWithoutExt),
		DisplayName: titleCase(nameWithoutExt),
		Group:       meshGroup,
		Type:        "ply",
		FilePath:    filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		// If we can't read the file, return with fallback values
		return sceneInfo, nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "end_header" {
			break
		}

		content, ok := strings.CutPrefix(line, "comment ")
		if !ok {
			continue
		}
		key, value, ok := strings.Cut(content, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(key) {
		case "Scene":
			sceneInfo.Name = value
		case "Variant":
			sceneInfo.Variant = value
		case "Description":
			sceneInfo.Description = value
		case "Group":
			sceneInfo.Group = value
		}
	}

	if sceneInfo.Variant != "" {
		sceneInfo.DisplayName = fmt.Sprintf("%s - %s", sceneInfo.Name, sceneInfo.Variant)
	} else {
		sceneInfo.DisplayName = sceneInfo.Name
	}

	return sceneInfo, scanner.Err()
}

// ListAllScenes returns both built-in and mesh scenes, grouped by category
func ListAllScenes() (ScenesResponse, error) {
	meshScenes, err := ListMeshScenes()
	if err != nil {
		return ScenesResponse{}, fmt.Errorf("failed to list mesh scenes: %w", err)
	}
	return groupScenes(append(BuiltinScenes(), meshScenes...)), nil
}

// groupScenes orders groups with built-ins first, then alphabetically
func groupScenes(allScenes []SceneInfo) ScenesResponse {
	var response ScenesResponse

	groupMap := make(map[string][]SceneInfo)
	for _, scene := range allScenes {
		groupMap[scene.Group] = append(groupMap[scene.Group], scene)
	}

	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtinGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	if builtInGroup, exists := groupMap[builtinGroup]; exists {
		response.Groups = append(response.Groups, SceneGroup{Name: builtinGroup, Scenes: builtInGroup})
	}
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{Name: groupName, Scenes: groupMap[groupName]})
	}

	return response
}

// LoadScene creates a scene by registry ID
func LoadScene(id string, logger core.Logger, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	for _, b := range builtinScenes {
		if b.info.ID == id {
			return b.build(cameraOverrides...)
		}
	}

	if strings.HasPrefix(id, "ply:") {
		meshScenes, err := ListMeshScenes()
		if err != nil {
			return nil, err
		}
		for _, info := range meshScenes {
			if info.ID == id {
				return LoadSceneInfo(info, logger, cameraOverrides...)
			}
		}
	}

	return nil, fmt.Errorf("unknown scene %q", id)
}

// LoadSceneInfo creates the scene a registry entry describes
func LoadSceneInfo(info SceneInfo, logger core.Logger, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	switch info.Type {
	case "ply":
		s, err := NewPLYScene(info.FilePath, logger, cameraOverrides...)
		if err != nil {
			return nil, err
		}
		s.Name = info.DisplayName
		return s, nil
	case "builtin":
		return LoadScene(info.ID, logger, cameraOverrides...)
	default:
		return nil, fmt.Errorf("unknown scene type %q for %s", info.Type, info.ID)
	}
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
