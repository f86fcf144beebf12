package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"ccivisits-backend/pkg/auth"
)

var dbClient *dynamodb.Client
var validator *auth.JWTValidator
var connectionsTable string

func init() {
	connectionsTable = os.Getenv("CONNECTIONS_TABLE_NAME")
	jwtSecret := os.Getenv("JWT_SECRET")
	jwtIssuer := os.Getenv("JWT_ISSUER")

	if connectionsTable == "" || jwtSecret == "" {
		log.Fatalf("FATAL: Environment variables CONNECTIONS_TABLE_NAME and JWT_SECRET must be set.")
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("Unable to load SDK config, %v", err)
	}
	dbClient = dynamodb.NewFromConfig(awsCfg)

	validator, err = auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     jwtSecret,
		Issuer:        jwtIssuer,
	})
	if err != nil {
		log.Fatalf("Unable to create JWT validator: %v", err)
	}
}

func handler(ctx context.Context, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	token, ok := req.QueryStringParameters["token"]
	if !ok || token == "" {
		log.Println("WARN: Connection request missing token.")
		return events.APIGatewayProxyResponse{StatusCode: http.StatusUnauthorized}, nil
	}

	claims, err := validator.ValidateToken(token)
	if err != nil {
		log.Printf("ERROR: Invalid token provided. %v", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusUnauthorized}, nil
	}

	connectionID := req.RequestContext.ConnectionID
	// Stale connections expire automatically via the table TTL.
	expireAt := time.Now().Add(2 * time.Hour).Unix()

	pk := "USER#" + claims.UserID
	sk := "CONN#" + connectionID

	_, err = dbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(connectionsTable),
		Item: map[string]types.AttributeValue{
			"PK":       &types.AttributeValueMemberS{Value: pk},
			"SK":       &types.AttributeValueMemberS{Value: sk},
			"GSI1PK":   &types.AttributeValueMemberS{Value: sk}, // For disconnect lookup
			"GSI1SK":   &types.AttributeValueMemberS{Value: pk},
			"expireAt": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expireAt)},
		},
	})

	if err != nil {
		log.Printf("ERROR: Failed to save connection to DynamoDB: %v", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, nil
	}

	log.Printf("Successfully connected user %s with connection ID %s", claims.UserID, connectionID)
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

func main() {
	lambda.Start(handler)
}
