// Package mqtt provides the MQTT v5 session that binds the DAB dispatcher
// to a broker.
//
// This package manages:
//   - A single MQTT v5 connection to the configured broker, with QoS 1
//     subscriptions for every topic the Device Registry publishes
//   - The inbound request/response loop: decode PUBLISH as JSON, dispatch,
//     encode the reply, publish it back on the requester's response-topic
//   - An async outbound publish path for unsolicited instance telemetry
//   - Publish-side serialization and graceful disconnect with drain
//
// # Architecture
//
// Unlike a general-purpose pub/sub client, Session has exactly one job: run
// the DAB RPC loop. The native read loop runs on its own goroutine; a
// bounded channel hands decoded PUBLISHes off to a single worker goroutine
// that dispatches them and writes the replies. Unsolicited Publish calls and
// keep-alive pings write from their own goroutines; every write to the wire
// takes the same write mutex, so packets never interleave. Parsing and
// dispatch happen outside that mutex.
//
//	DAB clients ↔ MQTT v5 Broker ↔ Session ↔ dab.Dispatcher
//
// # Usage
//
//	sess := mqtt.NewSession(dispatcher, logger, keepAlive, drainTimeout, publishTimeout)
//	if err := sess.Connect(ctx, brokerURI, clientID, registry.SubscriptionTopics()); err != nil {
//	    log.Fatal(err)
//	}
//	registry.SetPublishCallback(sess.Publish)
//	defer sess.Disconnect()
//	sess.Wait()
package mqtt
