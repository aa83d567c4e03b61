// этот код не зависит от приложения,
// и нужен только для ручной проверки сброса кэша через события каталога
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

func main() {
	brokerAddress := flag.String("broker", "localhost:9092", "kafka broker")
	topic := flag.String("topic", "catalog-events", "catalog topic from config.yaml")
	sku := flag.String("sku", "OHMS-6", "sku whose price changed")
	flag.Parse()

	message := fmt.Sprintf(`{
           "type": "price_changed",
           "sku": %q,
           "reason": "manual test",
           "occurred_at": %q
        }`, *sku, time.Now().UTC().Format(time.RFC3339))

	writer := &kafka.Writer{
		Addr:     kafka.TCP(*brokerAddress),
		Topic:    *topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer writer.Close()

	log.Println("Sending catalog event to Kafka...")
	err := writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(*sku),
			Value: []byte(message),
		},
	)
	if err != nil {
		log.Fatalf("Failed to write message: %v", err)
	}
	fmt.Println("Message sent successfully!")
}
