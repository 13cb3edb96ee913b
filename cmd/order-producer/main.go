package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/segmentio/kafka-go"

	orderreaderv1 "github.com/muhammadchandra19/exchange-core/internal/domain/order-reader/v1"
)

const userCount = 100

// generateRequests creates a funding preamble followed by a stream of limit
// orders around a base price, with an occasional cancel of an already sent
// order. Every user is deposited both assets up front so no order is
// rejected for lack of funds; order ids are sequential so every cancel
// targets a real id.
func generateRequests(count int, baseAsset, quoteAsset string, basePrice, priceSpread uint64, cancelRatio float64) []orderreaderv1.OrderRequest {
	requests := make([]orderreaderv1.OrderRequest, 0, count+2*userCount)

	depositAmount := basePrice * priceSpread * 100
	for user := uint64(1); user <= userCount; user++ {
		requests = append(requests,
			orderreaderv1.OrderRequest{
				UserID:   user,
				Type:     orderreaderv1.RequestTypeDeposit,
				Asset:    baseAsset,
				Quantity: depositAmount,
			},
			orderreaderv1.OrderRequest{
				UserID:   user,
				Type:     orderreaderv1.RequestTypeDeposit,
				Asset:    quoteAsset,
				Quantity: depositAmount,
			},
		)
	}

	nextOrderID := uint64(1)

	for i := 0; i < count; i++ {
		if nextOrderID > 1 && rand.Float64() < cancelRatio {
			requests = append(requests, orderreaderv1.OrderRequest{
				OrderID: rand.Uint64N(nextOrderID-1) + 1,
				Type:    orderreaderv1.RequestTypeCancel,
			})
			continue
		}

		isBid := rand.Float64() < 0.5

		// Bids sit below the base price, asks above, so most orders rest
		// and the ones that cross produce the occasional trade.
		offset := rand.Uint64N(priceSpread + 1)
		price := basePrice + offset
		if isBid {
			if offset >= basePrice {
				offset = basePrice - 1
			}
			price = basePrice - offset
		}

		requests = append(requests, orderreaderv1.OrderRequest{
			OrderID:  nextOrderID,
			UserID:   rand.Uint64N(userCount) + 1,
			Type:     orderreaderv1.RequestTypeLimit,
			Bid:      isBid,
			Price:    price,
			Quantity: rand.Uint64N(10) + 1,
		})
		nextOrderID++
	}

	return requests
}

func main() {
	var (
		brokers     = flag.String("brokers", "localhost:9092", "Kafka broker addresses (comma-separated)")
		topic       = flag.String("topic", "orders", "Kafka topic name")
		file        = flag.String("file", "", "JSON file with order requests (optional, generates requests if not provided)")
		delay       = flag.Duration("delay", 100*time.Millisecond, "Delay between messages")
		count       = flag.Int("count", 1000, "Number of requests to generate")
		baseAsset   = flag.String("base-asset", "BTC", "Base asset symbol for deposits")
		quoteAsset  = flag.String("quote-asset", "USDT", "Quote asset symbol for deposits")
		basePrice   = flag.Uint64("base-price", 50000, "Base price for generated orders")
		priceSpread = flag.Uint64("price-spread", 200, "Price spread range")
		cancelRatio = flag.Float64("cancel-ratio", 0.1, "Fraction of requests that are cancels")
	)
	flag.Parse()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(*brokers),
		Topic:        *topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	defer writer.Close()

	ctx := context.Background()

	var requests []orderreaderv1.OrderRequest
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("Failed to read file %s: %v", *file, err)
		}
		if err := json.Unmarshal(data, &requests); err != nil {
			log.Fatalf("Failed to parse JSON from file: %v", err)
		}
		log.Printf("Loaded %d requests from file: %s", len(requests), *file)
	} else {
		log.Printf("Generating %d requests...", *count)
		requests = generateRequests(*count, *baseAsset, *quoteAsset, *basePrice, *priceSpread, *cancelRatio)
	}

	log.Printf("Sending requests to Kafka broker: %s, topic: %s", *brokers, *topic)

	for i, request := range requests {
		payload, err := json.Marshal(request)
		if err != nil {
			log.Printf("Failed to marshal request %d: %v", i+1, err)
			continue
		}

		msg := kafka.Message{
			Value: payload,
			Time:  time.Now(),
		}

		if err := writer.WriteMessages(ctx, msg); err != nil {
			log.Printf("Failed to send request %d (order %d): %v", i+1, request.OrderID, err)
			continue
		}

		if (i+1)%100 == 0 || i == len(requests)-1 {
			log.Printf("Sent %d/%d requests", i+1, len(requests))
		}

		if i < len(requests)-1 {
			time.Sleep(*delay)
		}
	}

	limits := 0
	cancels := 0
	deposits := 0
	for _, request := range requests {
		switch request.Type {
		case orderreaderv1.RequestTypeCancel:
			cancels++
		case orderreaderv1.RequestTypeDeposit:
			deposits++
		default:
			limits++
		}
	}

	log.Printf("--- Summary ---")
	log.Printf("Total Requests: %d", len(requests))
	log.Printf("Deposits: %d", deposits)
	log.Printf("Limit Orders: %d", limits)
	log.Printf("Cancels: %d", cancels)
}
