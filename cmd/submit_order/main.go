// submit_order posts one order and watches it until it settles.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kayung-developer/QuantumEdge/config"
	"github.com/kayung-developer/QuantumEdge/gateway"
	"github.com/kayung-developer/QuantumEdge/internal/store"
	"github.com/kayung-developer/QuantumEdge/order"
	"github.com/kayung-developer/QuantumEdge/trade"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "path to config file")
	exchange := flag.String("exchange", "auto", "target exchange (auto routes server-side)")
	symbol := flag.String("symbol", "", "symbol, e.g. BTCUSDT")
	side := flag.String("side", "BUY", "BUY or SELL")
	orderType := flag.String("type", "MARKET", "MARKET or LIMIT")
	qty := flag.Float64("qty", 0, "quantity to trade")
	price := flag.Float64("price", 0, "limit price (required for LIMIT)")
	paper := flag.Bool("paper", false, "simulate against live market data")
	twapMinutes := flag.Int("twapMinutes", 0, "TWAP duration in minutes (0 = plain order)")
	twapChildren := flag.Int("twapChildren", 0, "TWAP child slice count")
	watch := flag.Bool("watch", true, "poll until the order settles")
	flag.Parse()

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	client := &gateway.Client{
		BaseURL:    cfg.API.BaseURL,
		AuthToken:  cfg.API.Token,
		HTTPClient: gateway.NewDefaultHTTPClient(),
	}
	st := store.New(client, store.Options{PollInterval: cfg.PollInterval()})
	defer st.Close()

	req := gateway.CreateOrderRequest{
		Exchange:     *exchange,
		Symbol:       *symbol,
		OrderType:    *orderType,
		Side:         *side,
		Quantity:     *qty,
		Price:        *price,
		IsPaperTrade: *paper,
	}
	if *twapMinutes > 0 || *twapChildren > 0 {
		req.IsAlgorithmic = true
		req.AlgoParams = &gateway.AlgoParams{
			DurationMinutes: *twapMinutes,
			NumChildren:     *twapChildren,
		}
	}

	submitter := &trade.Submitter{Client: client, Tracker: st}
	o, err := submitter.Submit(context.Background(), req)
	if err != nil {
		log.Fatalf("submit: %v", err)
	}
	fmt.Printf("order %s accepted: %s %s %.8f %s status=%s\n",
		o.ID, o.Side, o.OrderType, o.QtyRequested, o.Symbol, o.Status)

	if !*watch {
		return
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sub := st.Subscribe()
	last := o.Status
	if e, ok := st.Get(o.ID); ok && e.Order.Status.Terminal() {
		printUpdate(e)
		return
	}
	for {
		select {
		case <-quit:
			return
		case snap, ok := <-sub:
			if !ok {
				return
			}
			for _, e := range snap {
				if e.Order.ID != o.ID {
					continue
				}
				if e.Order.Status != last {
					last = e.Order.Status
					printUpdate(e)
				}
				if e.Order.Status.Terminal() {
					return
				}
			}
		}
	}
}

func printUpdate(e store.Entry) {
	o := e.Order
	fmt.Printf("%s -> %s filled=%.8f/%.8f", o.ID, o.Status, o.QtyFilled, o.QtyRequested)
	if o.AvgFillPrice > 0 {
		fmt.Printf(" avg=%.8f", o.AvgFillPrice)
	}
	if o.Status == order.StatusRejected || o.Status == order.StatusError {
		fmt.Printf(" reason=%q", o.FailureReason)
	}
	fmt.Println()
}
