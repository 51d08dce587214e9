// usicheck probes a running bridge: readiness, an optional test move, and
// an optional window on the analysis stream. Useful for verifying a
// deployment without wiring up a frontend.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hisui/usi-bridge/internal/bridgeclient"
	"github.com/hisui/usi-bridge/pkg/enginedto"
)

const defaultSFEN = "lnsgkgsnl/1b5r1/ppppppppp/9/9/9/PPPPPPPPP/1R5B1/LNSGKGSNL b - 1"

func main() {
	baseURL := strings.TrimSpace(os.Getenv("BRIDGE_BASE_URL"))
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8700"
	}
	doMove := strings.EqualFold(os.Getenv("BRIDGE_CHECK_MOVE"), "true")
	watchSec := 0
	if v := strings.TrimSpace(os.Getenv("BRIDGE_WATCH_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			watchSec = n
		}
	}

	client := bridgeclient.NewClient(baseURL,
		bridgeclient.WithTimeout(8*time.Second),
		bridgeclient.WithRetry(3),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ready, err := client.Ready(ctx)
	if err != nil {
		log.Fatalf("/engine/ready error: %v", err)
	}
	log.Printf("/engine/ready ok: ready=%v", ready)

	if !doMove {
		watchAnalysis(client, watchSec)
		return
	}

	if !ready {
		init, err := client.Init(ctx, "")
		if err != nil {
			log.Fatalf("/engine/init error: %v", err)
		}
		log.Printf("/engine/init ok: session=%s", init.SessionUUID)
	}

	moveCtx, moveCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer moveCancel()
	move, err := client.Move(moveCtx, enginedto.MoveRequest{
		SFEN:   defaultSFEN,
		TimeMs: 1000,
	})
	if err != nil {
		log.Fatalf("/engine/move error: %v", err)
	}
	log.Printf("/engine/move ok: move=%s", move)

	watchAnalysis(client, watchSec)
}

func watchAnalysis(client *bridgeclient.Client, seconds int) {
	if seconds <= 0 {
		return
	}
	log.Printf("watching analysis stream for %ds", seconds)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(seconds)*time.Second)
	defer cancel()

	err := client.WatchAnalysis(ctx, func(info enginedto.SearchInfo) {
		var parts []string
		if info.Depth != nil {
			parts = append(parts, fmt.Sprintf("depth=%d", *info.Depth))
		}
		if info.ScoreCP != nil {
			parts = append(parts, fmt.Sprintf("cp=%d", *info.ScoreCP))
		}
		if len(info.PV) > 0 {
			parts = append(parts, "pv="+strings.Join(info.PV, " "))
		}
		fmt.Printf("analysis %s\n", strings.Join(parts, " "))
	})
	if err != nil && ctx.Err() == nil {
		log.Printf("analysis stream error: %v", err)
	}
}
