// Command heimdall-board is a visual front-end over the Heimdall engine,
// exercising internal/engine.Engine as a GUI arbiter would: set position,
// go/stop, draw PV. It is outside the core search/eval spec scope — the
// board UI itself is the domain of internal/ui, unchanged in approach from
// the teacher's original ChessPlay renderer.
package main

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/heimdall-engine/heimdall/internal/ui"
)

func main() {
	game := ui.NewGame()

	ebiten.SetWindowSize(ui.ScreenWidth, ui.ScreenHeight)
	ebiten.SetWindowTitle("Heimdall Board")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	// Enable smooth scaling when window is resized or fullscreen
	ebiten.SetScreenFilterEnabled(true)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
