// order_status fetches the current record for one order id.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/kayung-developer/QuantumEdge/config"
	"github.com/kayung-developer/QuantumEdge/gateway"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "path to config file")
	id := flag.String("id", "", "order id")
	flag.Parse()

	if *id == "" {
		log.Fatal("order id required (-id)")
	}
	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	client := &gateway.Client{
		BaseURL:    cfg.API.BaseURL,
		AuthToken:  cfg.API.Token,
		HTTPClient: gateway.NewDefaultHTTPClient(),
	}
	o, err := client.GetOrder(context.Background(), *id)
	if err != nil {
		log.Fatalf("fetch order: %v", err)
	}

	fmt.Printf("id:        %s\n", o.ID)
	fmt.Printf("exchange:  %s\n", o.Exchange)
	fmt.Printf("symbol:    %s\n", o.Symbol)
	fmt.Printf("type/side: %s %s\n", o.OrderType, o.Side)
	fmt.Printf("status:    %s\n", o.Status)
	fmt.Printf("filled:    %.8f / %.8f\n", o.QtyFilled, o.QtyRequested)
	if o.AvgFillPrice > 0 {
		fmt.Printf("avg price: %.8f\n", o.AvgFillPrice)
	}
	if o.ParentOrderID != "" {
		fmt.Printf("parent:    %s\n", o.ParentOrderID)
	}
	if o.FailureReason != "" {
		fmt.Printf("failure:   %s\n", o.FailureReason)
	}
	if o.IsPaperTrade {
		fmt.Println("mode:      paper")
	}
}
