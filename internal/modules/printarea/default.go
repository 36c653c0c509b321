package printarea

var (
	teeFront = &Mock{Src: "/images/mockups/tee-front.jpg", Alt: "Front mockup"}
	teeBack  = &Mock{Src: "/images/mockups/tee-back.jpg", Alt: "Back mockup"}
)

var defaultCatalog = MustCatalog(
	Area{ID: "leftChest", Label: "Left Chest", Side: SideFront, Surcharge: 200,
		Box: Box{X: 0.62, Y: 0.24, W: 0.18, H: 0.18}, Mock: teeFront},
	Area{ID: "centerChest", Label: "Center Chest", Side: SideFront, Surcharge: 300,
		Box: Box{X: 0.35, Y: 0.22, W: 0.3, H: 0.25}, Mock: teeFront},
	Area{ID: "fullFront", Label: "Full Front", Side: SideFront, Surcharge: 500,
		Box: Box{X: 0.2, Y: 0.18, W: 0.6, H: 0.6}, Mock: teeFront},
	Area{ID: "oversizeFront", Label: "Oversize Front", Side: SideFront, Surcharge: 700,
		Box: Box{X: 0.15, Y: 0.12, W: 0.7, H: 0.72}, Mock: teeFront},

	Area{ID: "backCollar", Label: "Back Collar", Side: SideBack, Surcharge: 200,
		Box: Box{X: 0.4, Y: 0.08, W: 0.2, H: 0.1}, Mock: teeBack},
	Area{ID: "upperBack", Label: "Upper Back", Side: SideBack, Surcharge: 300,
		Box: Box{X: 0.25, Y: 0.15, W: 0.5, H: 0.25}, Mock: teeBack},
	Area{ID: "fullBack", Label: "Full Back", Side: SideBack, Surcharge: 500,
		Box: Box{X: 0.2, Y: 0.18, W: 0.6, H: 0.6}, Mock: teeBack},

	Area{ID: "leftSleeve", Label: "Left Sleeve", Side: SideSleeve, Surcharge: 200,
		Box: Box{X: 0.15, Y: 0.35, W: 0.2, H: 0.2}, Mock: &Mock{Src: "/images/mockups/tee-front.jpg", Alt: "Sleeve mockup"}},
	Area{ID: "rightSleeve", Label: "Right Sleeve", Side: SideSleeve, Surcharge: 200,
		Box: Box{X: 0.65, Y: 0.35, W: 0.2, H: 0.2}, Mock: &Mock{Src: "/images/mockups/tee-front.jpg", Alt: "Sleeve mockup"}},
)

// Default returns the catalog for the unisex tee.
func Default() *Catalog { return defaultCatalog }
