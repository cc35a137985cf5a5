package scene

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"cornell-empty", "Cornell Empty"},
		{"dragon_gold", "Dragon Gold"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

const metadataHeader = `ply
format ascii 1.0
comment Scene: Stanford Bunny
comment Variant: Low Poly
comment Description: Decimated bunny
comment Group: Scanned Meshes
element vertex 3
property float x
property float y
property float z
element face 1
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
0 1 0
3 0 1 2
`

func TestParsePLYMetadata(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected SceneInfo
	}{
		{
			name:    "bunny.ply",
			content: metadataHeader,
			expected: SceneInfo{
				ID:          "ply:bunny",
				Name:        "Stanford Bunny",
				DisplayName: "Stanford Bunny - Low Poly",
				Description: "Decimated bunny",
				Group:       "Scanned Meshes",
				Type:        "ply",
				Variant:     "Low Poly",
			},
		},
		{
			name:    "no_metadata.ply",
			content: "ply\nformat ascii 1.0\ncomment just a mesh\nend_header\n",
			expected: SceneInfo{
				ID:          "ply:no_metadata",
				Name:        "No Metadata",
				DisplayName: "No Metadata",
				Group:       "Mesh Scenes",
				Type:        "ply",
			},
		},
	}

	tempDir := t.TempDir()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			filePath := filepath.Join(tempDir, tc.name)
			if err := os.WriteFile(filePath, []byte(tc.content), 0644); err != nil {
				t.Fatalf("Failed to write test file: %v", err)
			}

			result, err := ParsePLYMetadata(filePath)
			if err != nil {
				t.Fatalf("ParsePLYMetadata failed: %v", err)
			}

			tc.expected.FilePath = filePath
			if result != tc.expected {
				t.Errorf("Expected %+v, got %+v", tc.expected, result)
			}
		})
	}
}

func TestParsePLYMetadata_MissingFile(t *testing.T) {
	info, err := ParsePLYMetadata("/nonexistent/missing-mesh.ply")
	if err != nil {
		t.Fatalf("Expected fallback values instead of an error, got %v", err)
	}
	if info.Name != "Missing Mesh" || info.ID != "ply:missing-mesh" {
		t.Errorf("Expected filename fallbacks, got %+v", info)
	}
}

func TestListMeshScenes(t *testing.T) {
	emptyDir := t.TempDir()
	scenes, err := ListMeshScenes(filepath.Join(emptyDir, "missing"), emptyDir)
	if err != nil {
		t.Fatalf("ListMeshScenes failed: %v", err)
	}
	if len(scenes) != 0 {
		t.Errorf("Expected no scenes in an empty directory, got %d", len(scenes))
	}

	dir := t.TempDir()
	for _, name := range []string{"zebra.ply", "apple.ply", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("ply\nformat ascii 1.0\nend_header\n"), 0644); err != nil {
			t.Fatalf("Failed to write test file: %v", err)
		}
	}

	scenes, err = ListMeshScenes(dir)
	if err != nil {
		t.Fatalf("ListMeshScenes failed: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("Expected 2 PLY scenes, got %d", len(scenes))
	}
	if scenes[0].DisplayName != "Apple" || scenes[1].DisplayName != "Zebra" {
		t.Errorf("Expected scenes sorted by display name, got %s, %s", scenes[0].DisplayName, scenes[1].DisplayName)
	}
}

func TestGroupScenes(t *testing.T) {
	all := append(BuiltinScenes(),
		SceneInfo{ID: "ply:b", Group: "Zoo"},
		SceneInfo{ID: "ply:a", Group: "Mesh Scenes"},
	)

	response := groupScenes(all)
	if len(response.Groups) != 3 {
		t.Fatalf("Expected 3 groups, got %d", len(response.Groups))
	}

	expected := []string{"Built-in Scenes", "Mesh Scenes", "Zoo"}
	for i, name := range expected {
		if response.Groups[i].Name != name {
			t.Errorf("Group %d: expected %s, got %s", i, name, response.Groups[i].Name)
		}
	}
	if len(response.Groups[0].Scenes) != len(builtinScenes) {
		t.Errorf("Expected %d built-in scenes, got %d", len(builtinScenes), len(response.Groups[0].Scenes))
	}
}

func TestBuiltinScenes_Load(t *testing.T) {
	for _, info := range BuiltinScenes() {
		t.Run(info.ID, func(t *testing.T) {
			if info.Type != "builtin" || info.DisplayName == "" {
				t.Errorf("Expected populated builtin entry, got %+v", info)
			}

			s, err := LoadScene(info.ID, nil)
			if err != nil {
				t.Fatalf("Failed to load scene: %v", err)
			}
			if len(s.Surfaces) == 0 || len(s.Lights) == 0 {
				t.Errorf("Expected surfaces and lights, got %d and %d", len(s.Surfaces), len(s.Lights))
			}
			if _, err := s.Build(); err != nil {
				t.Errorf("Expected scene to build, got %v", err)
			}
		})
	}
}

func TestLoadScene_Unknown(t *testing.T) {
	if _, err := LoadScene("no-such-scene", nil); err == nil {
		t.Error("Expected error for unknown scene")
	}
	if _, err := LoadScene("ply:no-such-mesh", nil); err == nil {
		t.Error("Expected error for unknown mesh scene")
	}
}
