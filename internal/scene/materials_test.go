package scene

import (
	"os"
	"path/filepath"
	"testing"

	"howett.net/plist"
)

func TestLoadMaterials(t *testing.T) {
	doc := map[string]interface{}{
		"materials": []interface{}{
			map[string]interface{}{
				"mi": "matte", "tc": 0.0, "rc": 0.8, "mc": 0.0, "sic": 0.0, "sh": true,
			},
			map[string]interface{}{
				"mi": "glow", "sic": 2.5, "sh": false,
			},
		},
	}
	raw, err := plist.Marshal(doc, plist.BinaryFormat)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "palette.settings.vmaxpsb")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	mats, err := LoadMaterials(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if mats[0].Name != "matte" || mats[0].Roughness != 0.8 || !mats[0].EnableShadows {
		t.Fatalf("slot 0 = %+v", mats[0])
	}
	if mats[1].Name != "glow" || mats[1].Emission != 2.5 || mats[1].EnableShadows {
		t.Fatalf("slot 1 = %+v", mats[1])
	}
	// Unfilled slots stay zero-valued.
	if mats[5].Name != "" || mats[5].Emission != 0 {
		t.Fatalf("slot 5 = %+v", mats[5])
	}
}

func TestLoadMaterialsNoArray(t *testing.T) {
	raw, err := plist.Marshal(map[string]interface{}{"other": 1}, plist.BinaryFormat)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "empty.vmaxpsb")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadMaterials(path); err != nil {
		t.Fatalf("missing materials array should not fail: %v", err)
	}
}
