package svgnode

import "testing"

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("unexpected defaults %+v", cfg)
	}

	t.Setenv("SVGSCENE_NO_SYNC", "true")
	t.Setenv("SVGSCENE_WIDTH", "640")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.NoSync || cfg.Width != 640 || cfg.Height != 100 {
		t.Errorf("unexpected config %+v", cfg)
	}

	a := NewArena(cfg)
	sink := &recordingSink{}
	root, err := a.NewSVG(sink)
	if err != nil {
		t.Fatal(err)
	}
	if root.Value("width") != "640px" || len(sink.markups) != 0 {
		t.Errorf("unexpected root %v, %d notifications", root.Value("width"), len(sink.markups))
	}
	a.Sync().Toggle()
	if _, err := root.Rect(); err != nil {
		t.Fatal(err)
	}
	if len(sink.markups) != 1 {
		t.Errorf("expected a notification, got %d", len(sink.markups))
	}

	t.Setenv("SVGSCENE_WIDTH", "wide")
	if _, err := LoadConfig(); err == nil {
		t.Error("expected a parse error")
	}
}

func TestZeroConfig(t *testing.T) {
	a := NewArena(Config{})
	if !a.Sync().Enabled() {
		t.Fatal("sync must be enabled by default")
	}
	sink := &recordingSink{}
	root, err := a.NewSVG(sink)
	if err != nil {
		t.Fatal(err)
	}
	if root.Value("width") != "100px" || root.Value("height") != "100px" {
		t.Errorf("unexpected size %v x %v", root.Value("width"), root.Value("height"))
	}
	c, _ := root.Circle()
	if err := c.Set("r", 3); err != nil {
		t.Fatal(err)
	}
	if len(sink.markups) != 3 {
		t.Errorf("expected 3 notifications, got %d", len(sink.markups))
	}
	if a.Config() != DefaultConfig() {
		t.Errorf("unexpected config %+v", a.Config())
	}
}
