package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"forge/internal/common"
	"forge/internal/server/dao"
	"forge/internal/server/model"
	"forge/pkg/api"
)

type WebhookPayload struct {
	Name string `json:"name"`
}

const timestampMaxAge = 300 // seconds

// Webhook triggers a pipeline from an external system. The request is
// authenticated with a shared-secret signature over the timestamp and
// payload; the pipeline must declare a webhook trigger matching the
// request path.
func Webhook(c *gin.Context) {
	timestampStr := c.GetHeader("X-Webhook-Timestamp")
	signature := c.GetHeader("X-Webhook-Signature")
	if timestampStr == "" || signature == "" {
		common.Error(c, common.NewErrNo(common.RequestInvalid))
		return
	}

	timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		common.Error(c, common.NewErrNo(common.RequestInvalid))
		return
	}
	now := time.Now().Unix()
	if now-timestamp > timestampMaxAge || timestamp > now {
		common.Error(c, common.NewErrNo(common.RequestInvalid))
		return
	}

	// the signature covers the body bytes exactly as the caller sent them
	rawBody, err := c.GetRawData()
	if err != nil {
		common.Error(c, common.NewErrNo(common.RequestInvalid))
		return
	}
	secret := common.GetConfig().WebhookSecret
	if secret == "" {
		// an unset secret would make every signature forgeable
		common.Error(c, common.NewErrNo(common.WebhookInvalid))
		return
	}
	if !verifySignature(timestampStr, rawBody, signature, secret) {
		common.Error(c, common.NewErrNo(common.RequestInvalid))
		return
	}

	var payload WebhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil || payload.Name == "" {
		common.Error(c, common.NewErrNo(common.RequestInvalid))
		return
	}

	stored, err := dao.NewPipelineDao().GetNewestVersionByName(c, payload.Name)
	if err != nil {
		common.Error(c, err)
		return
	}

	spec, err := stored.Spec()
	if err != nil {
		common.Error(c, common.NewErrNo(common.YamlInvalid))
		return
	}
	declared := false
	for _, trigger := range spec.Triggers {
		if trigger.Webhook == c.Request.URL.String() {
			declared = true
			break
		}
	}
	if !declared {
		common.Error(c, common.NewErrNo(common.WebhookInvalid))
		return
	}

	execID, execUUID, err := StartExecution(c, stored, model.TriggerWebhook)
	if err != nil {
		common.Error(c, err)
		return
	}
	common.Success(c, api.TriggerResponse{ExecutionID: execID, ExecutionUUID: execUUID})
}

// Signature computes the webhook signature for a timestamp and payload.
// Exported for clients and tests.
func Signature(timestampStr string, payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s.%s", timestampStr, payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func verifySignature(timestampStr string, payload []byte, signature, secret string) bool {
	expected := Signature(timestampStr, payload, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
