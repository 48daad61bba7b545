package validators

import "go.mongodb.org/mongo-driver/bson"

var InvoiceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"number",
			"booking_id",
			"lines",
			"subtotal",
			"tax",
			"total",
			"currency",
			"status",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"number": bson.M{
				"bsonType":  "string",
				"minLength": 4,
				"maxLength": 32,
			},

			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"stay_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"lines": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"description", "quantity", "unit_price", "tax_rate"},
					"properties": bson.M{
						"description": bson.M{
							"bsonType":  "string",
							"minLength": 1,
						},
						"quantity": bson.M{
							"bsonType": "int",
							"minimum":  1,
						},
						"unit_price": bson.M{
							"bsonType": []string{"double", "int", "long", "decimal"},
							"minimum":  0,
						},
						"tax_rate": bson.M{
							"bsonType": []string{"double", "int", "long", "decimal"},
							"minimum":  0,
							"maximum":  1,
						},
					},
				},
			},

			"subtotal": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"tax": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"total": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"currency": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 3,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"unpaid",
					"paid",
					"refunded",
				},
			},

			"finalized_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var TransactionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"invoice_id",
			"provider",
			"amount",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"invoice_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"provider": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},

			"provider_txn_id": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"amount": bson.M{
				"bsonType":         []string{"double", "int", "long", "decimal"},
				"exclusiveMinimum": true,
				"minimum":          0,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"succeeded",
					"failed",
					"pending",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
