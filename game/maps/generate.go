package maps

import (
	"path/filepath"

	"github.com/mkowalska/anime-security-training/game/geom"
	"github.com/mkowalska/anime-security-training/game/tiled"
)

// TileSize is the tile edge length of generated maps, matching the
// default content exports.
const TileSize = 16

const borderThickness = 16

// Generate builds the fallback document for a map id. Known ids get
// their authored dev layout; anything else becomes a minimal bounded
// empty map. Output is deterministic for a given id.
func Generate(id string) *tiled.MapDocument {
	switch id {
	case "city":
		return generateCity()
	case "house_1":
		return generateHouse1()
	default:
		return generateEmpty(id, 60, 45, 1.0)
	}
}

// newBounded creates a generated document with border colliders on all
// four edges so the player cannot leave the map.
func newBounded(id string, widthTiles, heightTiles int, zoom float64) *tiled.MapDocument {
	doc := &tiled.MapDocument{
		ID:          id,
		Width:       widthTiles,
		Height:      heightTiles,
		TileW:       TileSize,
		TileH:       TileSize,
		DefaultZoom: zoom,
		Generated:   true,
	}

	w := doc.PixelWidth()
	h := doc.PixelHeight()
	doc.Colliders = append(doc.Colliders,
		geom.NewRect(0, 0, w, borderThickness),
		geom.NewRect(0, h-borderThickness, w, borderThickness),
		geom.NewRect(0, 0, borderThickness, h),
		geom.NewRect(w-borderThickness, 0, borderThickness, h),
	)
	return doc
}

func generateEmpty(id string, widthTiles, heightTiles int, zoom float64) *tiled.MapDocument {
	return newBounded(id, widthTiles, heightTiles, zoom)
}

func generateCity() *tiled.MapDocument {
	doc := newBounded("city", 160, 120, 1.0)
	doc.BackgroundSprite = filepath.Join("assets", "tiles", "city_bg.png")

	b1 := geom.NewRect(400, 260, 220, 160)
	b2 := geom.NewRect(900, 520, 260, 190)
	doc.Colliders = append(doc.Colliders, b1, b2)
	doc.Decorations = append(doc.Decorations, b1, b2)

	doc.NPCs = []tiled.NPC{
		{
			ID:       "aya",
			Dialogue: filepath.Join("dialogues", "npc_aya.json"),
			Sprite:   filepath.Join("assets", "sprites", "npc_aya.png"),
			Rect:     geom.NewRect(320, 220, 18, 22),
		},
		{
			ID:       "mika",
			Dialogue: filepath.Join("dialogues", "npc_mika.json"),
			Sprite:   filepath.Join("assets", "sprites", "npc_mika.png"),
			Rect:     geom.NewRect(1050, 320, 18, 22),
		},
	}

	zoom := 1.6
	doc.Portals = []tiled.Portal{
		{
			Rect:       geom.NewRect(600, 420, 22, 18),
			TargetMap:  "house_1",
			TargetX:    240,
			TargetY:    300,
			TargetZoom: &zoom,
			Prompt:     "Press E to enter",
			Sprite:     filepath.Join("assets", "sprites", "door.png"),
		},
	}
	return doc
}

func generateHouse1() *tiled.MapDocument {
	doc := newBounded("house_1", 60, 45, 1.6)
	doc.BackgroundSprite = filepath.Join("assets", "tiles", "house_1_bg.png")

	doc.NPCs = []tiled.NPC{
		{
			ID:       "ren",
			Dialogue: filepath.Join("dialogues", "npc_ren.json"),
			Sprite:   filepath.Join("assets", "sprites", "npc_ren.png"),
			Rect:     geom.NewRect(280, 200, 18, 22),
		},
	}

	bookSprite := filepath.Join("assets", "sprites", "book.png")
	doc.Books = []tiled.Book{
		{
			Rect:   geom.NewRect(420, 190, 18, 18),
			Title:  "Phishing Basics",
			Text:   "Phishing to metoda oszustwa, w której cyberprzestępcy podszywają się pod zaufane osoby lub instytucje, np. banki czy serwisy społecznościowe. Celem jest wyłudzenie poufnych informacji, takich jak hasła, dane kart kredytowych czy login do konta. Phishing może przybierać formę fałszywych e-maili, SMS-ów, a nawet wiadomości w mediach społecznościowych. Najlepszą ochroną jest ostrożność, sprawdzanie adresów URL i nigdy nieklikanie podejrzanych linków.",
			Prompt: "Press E to read: Phishing Basics",
			Sprite: bookSprite,
		},
		{
			Rect:   geom.NewRect(520, 250, 18, 18),
			Title:  "Passwords & Passphrases",
			Text:   "Hasła to Twoja pierwsza linia obrony w świecie cyfrowym. Silne hasło powinno być długie, unikalne i zawierać kombinację liter, cyfr i znaków specjalnych. Unikaj łatwych haseł typu „123456” lub „password” oraz używania tego samego hasła w wielu serwisach. Dobrym rozwiązaniem jest menedżer haseł, który pozwala bezpiecznie przechowywać i generować skomplikowane hasła.",
			Prompt: "Press E to read: Passwords",
			Sprite: bookSprite,
		},
		{
			Rect:   geom.NewRect(600, 310, 18, 18),
			Title:  "MFA Tips",
			Text:   "MFA, czyli uwierzytelnianie wieloskładnikowe, dodaje dodatkową warstwę ochrony do Twoich kont. Oprócz hasła, wymaga np. kodów SMS, aplikacji uwierzytelniającej (Authenticator) lub biometrii. Dzięki MFA, nawet jeśli ktoś pozna Twoje hasło, nie będzie mógł zalogować się bez dodatkowego czynnika. To prosta i skuteczna metoda zwiększenia bezpieczeństwa kont online.",
			Sprite: bookSprite,
		},
	}

	zoom := 1.0
	doc.Portals = []tiled.Portal{
		{
			Rect:       geom.NewRect(220, doc.PixelHeight()-60, 140, 34),
			TargetMap:  "city",
			TargetX:    500,
			TargetY:    450,
			TargetZoom: &zoom,
			Prompt:     "Press E to exit",
			Sprite:     filepath.Join("assets", "sprites", "door.png"),
		},
	}
	return doc
}
