package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwTypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var dbClient *dynamodb.Client
var apiGatewayManagementClient *apigatewaymanagementapi.Client
var connectionsTable string

func init() {
	connectionsTable = os.Getenv("CONNECTIONS_TABLE_NAME")
	wsApiEndpoint := os.Getenv("WEBSOCKET_API_ENDPOINT")
	awsCfg, err := awsConfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("Unable to load SDK config, %v", err)
	}
	dbClient = dynamodb.NewFromConfig(awsCfg)
	apiGatewayManagementClient = apigatewaymanagementapi.NewFromConfig(awsCfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = &wsApiEndpoint
	})
}

// visitChangeDetail covers visit.created, visit.updated and
// visit.order_committed payloads; each carries the day key that changed.
type visitChangeDetail struct {
	Day string `json:"day"`
}

func handler(ctx context.Context, event events.EventBridgeEvent) error {
	var detail visitChangeDetail
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		log.Printf("ERROR: could not unmarshal event detail: %v", err)
		return err
	}
	if detail.Day == "" {
		log.Printf("Skipping event without a day key: %s", event.DetailType)
		return nil
	}

	// Every connected client watching the timeline refetches the day.
	result, err := dbClient.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(connectionsTable),
		FilterExpression: aws.String("begins_with(SK, :sk_prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sk_prefix": &types.AttributeValueMemberS{Value: "CONN#"},
		},
	})
	if err != nil {
		log.Printf("ERROR: Failed to scan connections: %v", err)
		return err
	}

	message := []byte(fmt.Sprintf(`{"action": "dayUpdated", "day": %q}`, detail.Day))
	for _, item := range result.Items {
		skAttr, ok := item["SK"].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		connectionID := strings.TrimPrefix(skAttr.Value, "CONN#")
		_, err := apiGatewayManagementClient.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
			ConnectionId: &connectionID,
			Data:         message,
		})

		if err != nil {
			var goneErr *apigwTypes.GoneException
			if errors.As(err, &goneErr) {
				log.Printf("Found stale connection, deleting: %s", connectionID)
				dbClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
					TableName: aws.String(connectionsTable),
					Key: map[string]types.AttributeValue{
						"PK": item["PK"],
						"SK": item["SK"],
					},
				})
			} else {
				log.Printf("ERROR: Failed to post to connection %s: %v", connectionID, err)
			}
		}
	}
	return nil
}

func main() {
	lambda.Start(handler)
}
